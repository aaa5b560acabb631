package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/lifesync/internal/logger"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (Store, *sqlx.DB) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, logger.Discard()) })
	return NewStore(db, clockwork.NewFakeClockAt(testNow), logger.Discard()), db
}

func f(v float64) *float64 { return &v }

func newUser(t *testing.T, s Store, email string) *User {
	t.Helper()
	u := &User{Name: "Asha", Email: email, PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "again.db")
	db, err := Open(path, logger.Discard())
	require.NoError(t, err)
	Close(db, logger.Discard())

	db, err = Open(path, logger.Discard())
	require.NoError(t, err)
	defer Close(db, logger.Discard())
	assert.NoError(t, db.Ping())
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)

	u := newUser(t, s, "  Asha@Example.COM ")
	assert.NotZero(t, u.ID)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, testNow, u.CreatedAt)

	err := s.CreateUser(ctx, &User{Name: "Other", Email: "ASHA@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := s.UserByEmail(ctx, "asha@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.HeightCm)
	assert.Nil(t, got.TelegramChatID)

	_, err = s.UserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	chat := int64(4242)
	got.HeightCm = f(175)
	got.WeightKg = f(70)
	got.TelegramChatID = &chat
	require.NoError(t, s.UpdateProfile(ctx, got))

	again, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 175.0, *again.HeightCm)
	assert.Equal(t, chat, *again.TelegramChatID)

	newUser(t, s, "nochat@example.com")
	linked, err := s.UsersWithTelegram(ctx)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, u.ID, linked[0].ID)

	assert.ErrorIs(t, s.UpdateProfile(ctx, &User{ID: 9999, Name: "ghost"}), ErrNotFound)
}

func TestMealsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	u := newUser(t, s, "meals@example.com")

	for i := range 12 {
		m := &Meal{
			UserID:    u.ID,
			LoggedAt:  testNow.Add(-time.Duration(i) * time.Hour),
			MealType:  "snack",
			FoodItems: "apple",
			Calories:  f(float64(100 + i)),
		}
		require.NoError(t, s.AddMeal(ctx, m))
		assert.NotZero(t, m.ID)
	}

	recent, err := s.RecentMeals(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, 100.0, *recent[0].Calories)
	assert.Equal(t, testNow, recent[0].LoggedAt)
	assert.Nil(t, recent[0].ProteinG)

	window, err := s.MealsBetween(ctx, u.ID, testNow.Add(-2*time.Hour), testNow)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, 102.0, *window[0].Calories)
	assert.Equal(t, 101.0, *window[1].Calories)

	other := newUser(t, s, "other@example.com")
	none, err := s.RecentMeals(ctx, other.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOtherResources(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	u := newUser(t, s, "res@example.com")

	mins := 45
	w := &Workout{UserID: u.ID, WorkoutType: "run", DurationMinutes: &mins, CaloriesBurned: f(400), Notes: "easy"}
	require.NoError(t, s.AddWorkout(ctx, w))
	assert.Equal(t, testNow, w.LoggedAt)

	workouts, err := s.RecentWorkouts(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, "easy", workouts[0].Notes)
	assert.Equal(t, 45, *workouts[0].DurationMinutes)

	sl := &SleepRecord{UserID: u.ID, SleepHours: f(7.5), SleepQuality: "good", Bedtime: "23:00", WakeupTime: "06:30"}
	require.NoError(t, s.AddSleep(ctx, sl))
	sleep, err := s.SleepBetween(ctx, u.ID, testNow.Add(-time.Hour), testNow.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, sleep, 1)
	assert.Equal(t, "06:30", sleep[0].WakeupTime)

	b := &BodyStats{UserID: u.ID, WeightKg: f(70), BMI: f(22.86)}
	require.NoError(t, s.AddBodyStats(ctx, b))
	stats, err := s.RecentBodyStats(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 22.86, *stats[0].BMI)
	assert.Nil(t, stats[0].BodyFatPercent)
}

func TestReadBackTimesAreUTC(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	u := newUser(t, s, "utc@example.com")

	loaded, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, testNow, loaded.CreatedAt)
	assert.Same(t, time.UTC, loaded.UpdatedAt.Location())

	require.NoError(t, s.AddMeal(ctx, &Meal{UserID: u.ID, MealType: "lunch", FoodItems: "dal", Calories: f(300)}))
	require.NoError(t, s.AddWorkout(ctx, &Workout{UserID: u.ID, WorkoutType: "walk"}))
	require.NoError(t, s.AddSleep(ctx, &SleepRecord{UserID: u.ID, SleepHours: f(8)}))
	require.NoError(t, s.AddBodyStats(ctx, &BodyStats{UserID: u.ID, WeightKg: f(70)}))

	meals, err := s.RecentMeals(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Same(t, time.UTC, meals[0].LoggedAt.Location())

	workouts, err := s.RecentWorkouts(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Same(t, time.UTC, workouts[0].LoggedAt.Location())

	sleep, err := s.RecentSleep(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, sleep, 1)
	assert.Same(t, time.UTC, sleep[0].LoggedAt.Location())

	stats, err := s.RecentBodyStats(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Same(t, time.UTC, stats[0].LoggedAt.Location())

	cal, err := s.MealCalories(ctx, u.ID, testNow.Add(-time.Hour), testNow.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, cal, 1)
	assert.Equal(t, testNow, cal[0].LoggedAt)
}

func TestWeeklyTotals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	u := newUser(t, s, "week@example.com")
	since := testNow.AddDate(0, 0, -6)

	empty, err := s.WeeklyTotals(ctx, u.ID, since)
	require.NoError(t, err)
	assert.Equal(t, WeeklyTotals{}, empty)

	day := func(n int) time.Time { return testNow.AddDate(0, 0, -n) }
	require.NoError(t, s.AddMeal(ctx, &Meal{UserID: u.ID, LoggedAt: day(0), Calories: f(500), ProteinG: f(30)}))
	require.NoError(t, s.AddMeal(ctx, &Meal{UserID: u.ID, LoggedAt: day(1), Calories: f(700), ProteinG: f(50)}))
	require.NoError(t, s.AddMeal(ctx, &Meal{UserID: u.ID, LoggedAt: day(2), Calories: f(300)}))
	require.NoError(t, s.AddMeal(ctx, &Meal{UserID: u.ID, LoggedAt: day(10), Calories: f(9999), ProteinG: f(1)}))
	require.NoError(t, s.AddWorkout(ctx, &Workout{UserID: u.ID, LoggedAt: day(1), CaloriesBurned: f(250)}))
	require.NoError(t, s.AddWorkout(ctx, &Workout{UserID: u.ID, LoggedAt: day(3)}))
	require.NoError(t, s.AddSleep(ctx, &SleepRecord{UserID: u.ID, LoggedAt: day(1), SleepHours: f(6)}))
	require.NoError(t, s.AddSleep(ctx, &SleepRecord{UserID: u.ID, LoggedAt: day(2), SleepHours: f(8)}))
	require.NoError(t, s.AddBodyStats(ctx, &BodyStats{UserID: u.ID, LoggedAt: day(20), BMI: f(24.1)}))
	require.NoError(t, s.AddBodyStats(ctx, &BodyStats{UserID: u.ID, LoggedAt: day(15), BMI: f(23.5)}))
	require.NoError(t, s.AddBodyStats(ctx, &BodyStats{UserID: u.ID, LoggedAt: day(1), WeightKg: f(70)}))

	got, err := s.WeeklyTotals(ctx, u.ID, since)
	require.NoError(t, err)
	assert.InDelta(t, 1500, got.TotalCalories, 1e-9)
	assert.InDelta(t, 40, got.AvgMealProtein, 1e-9)
	assert.InDelta(t, 250, got.CaloriesBurned, 1e-9)
	assert.Equal(t, 2, got.WorkoutCount)
	assert.InDelta(t, 7, got.AvgSleepHours, 1e-9)
	require.NotNil(t, got.LatestBMI)
	assert.Equal(t, 23.5, *got.LatestBMI)

	burn, err := s.WorkoutBurn(ctx, u.ID, since, testNow.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, burn, 2)
	assert.Equal(t, 0.0, burn[0].Value)
	assert.Equal(t, 250.0, burn[1].Value)
	assert.Equal(t, day(3), burn[0].LoggedAt)

	cal, err := s.MealCalories(ctx, u.ID, since, testNow.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, cal, 3)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)

	require.NoError(t, s.RunSQLMaintenance(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.RunSQLMaintenance(ctx), context.Canceled)
}
