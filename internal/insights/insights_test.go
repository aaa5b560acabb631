package insights

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/lifesync/internal/database"
	"github.com/edgard/lifesync/internal/health"
	"github.com/edgard/lifesync/internal/logger"
)

var now = time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func setup(t *testing.T) (*Service, database.Store, int64) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "insights.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db, logger.Discard()) })

	clk := clockwork.NewFakeClockAt(now)
	store := database.NewStore(db, clk, logger.Discard())
	u := &database.User{Name: "Ravi", Email: "ravi@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return New(store, clk, time.UTC), store, u.ID
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, uid := setup(t)

	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.Add(-2 * time.Hour), Calories: f(600)}))
	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.Add(-time.Hour), MealType: "snack"}))
	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.AddDate(0, 0, -1), Calories: f(900)}))
	require.NoError(t, store.AddWorkout(ctx, &database.Workout{UserID: uid, LoggedAt: now.Add(-3 * time.Hour), CaloriesBurned: f(250)}))
	require.NoError(t, store.AddSleep(ctx, &database.SleepRecord{UserID: uid, LoggedAt: now.Add(-10 * time.Hour), SleepHours: f(7)}))

	d, err := svc.Dashboard(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", d.Date)
	assert.Len(t, d.Meals, 2)
	assert.Len(t, d.Workouts, 1)
	require.NotNil(t, d.Sleep)
	assert.Equal(t, 7.0, *d.Sleep.SleepHours)
	assert.Equal(t, health.DayTotals{Consumed: 600, Burned: 250, Net: 350}, d.DayTotals)
}

func TestDashboardEmptyDay(t *testing.T) {
	t.Parallel()
	svc, _, uid := setup(t)

	d, err := svc.Dashboard(context.Background(), uid)
	require.NoError(t, err)
	assert.NotNil(t, d.Meals)
	assert.NotNil(t, d.Workouts)
	assert.Nil(t, d.Sleep)
	assert.Equal(t, health.DayTotals{}, d.DayTotals)
}

func TestWeekly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, uid := setup(t)

	for day := range 7 {
		at := now.AddDate(0, 0, -day)
		require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: at, Calories: f(2000), ProteinG: f(70)}))
		require.NoError(t, store.AddSleep(ctx, &database.SleepRecord{UserID: uid, LoggedAt: at, SleepHours: f(8)}))
		if day%2 == 0 {
			require.NoError(t, store.AddWorkout(ctx, &database.Workout{UserID: uid, LoggedAt: at, CaloriesBurned: f(2975)}))
		}
	}
	// Outside the window.
	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.AddDate(0, 0, -7), Calories: f(5000)}))
	require.NoError(t, store.AddBodyStats(ctx, &database.BodyStats{UserID: uid, LoggedAt: now.AddDate(0, 0, -30), BMI: f(22.5)}))

	w, err := svc.Weekly(ctx, uid)
	require.NoError(t, err)
	assert.InDelta(t, 14000, w.Summary.TotalCalories, 1e-9)
	assert.InDelta(t, 70, w.Summary.AvgMealProtein, 1e-9)
	assert.Equal(t, 4, w.Summary.WorkoutCount)
	assert.InDelta(t, 1700, w.Summary.DailyBurned(), 1e-9)
	require.NotNil(t, w.Summary.LatestBMI)
	assert.Equal(t, 22.5, *w.Summary.LatestBMI)

	require.Len(t, w.Suggestions, 1)
	assert.Equal(t, health.Success, w.Suggestions[0].Type)
}

func TestAnalytics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, uid := setup(t)

	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.Add(-time.Hour), Calories: f(400)}))
	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.Add(-2 * time.Hour), Calories: f(300)}))
	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.AddDate(0, 0, -6), Calories: f(1500)}))
	require.NoError(t, store.AddMeal(ctx, &database.Meal{UserID: uid, LoggedAt: now.AddDate(0, 0, -8), Calories: f(999)}))
	require.NoError(t, store.AddWorkout(ctx, &database.Workout{UserID: uid, LoggedAt: now.AddDate(0, 0, -3), CaloriesBurned: f(320)}))

	a, err := svc.Analytics(ctx, uid)
	require.NoError(t, err)
	require.Len(t, a.CaloriesConsumed, health.WeekDays)
	require.Len(t, a.CaloriesBurned, health.WeekDays)

	assert.Equal(t, health.Point{Date: "2026-02-24", Value: 1500}, a.CaloriesConsumed[0])
	assert.Equal(t, health.Point{Date: "2026-03-02", Value: 700}, a.CaloriesConsumed[6])
	assert.Equal(t, health.Point{Date: "2026-02-27", Value: 320}, a.CaloriesBurned[3])
	assert.Equal(t, 0.0, a.CaloriesBurned[6].Value)
}
