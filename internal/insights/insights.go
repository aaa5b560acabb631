// Package insights combines stored records with the health rules to build
// the dashboard, weekly suggestions and analytics series.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/lifesync/internal/database"
	"github.com/edgard/lifesync/internal/health"
)

// Service is safe for concurrent use.
type Service struct {
	store database.Store
	clock clockwork.Clock
	loc   *time.Location
}

// New returns a Service that buckets days in loc. Nil values use wall
// time and the local zone.
func New(store database.Store, clock clockwork.Clock, loc *time.Location) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, clock: clock, loc: loc}
}

func (s *Service) now() time.Time { return s.clock.Now().In(s.loc) }

// Dashboard is today's activity for one user.
type Dashboard struct {
	Date     string                `json:"date"`
	Meals    []database.Meal       `json:"meals"`
	Workouts []database.Workout    `json:"workouts"`
	Sleep    *database.SleepRecord `json:"sleep"`
	health.DayTotals
}

func (s *Service) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	start := health.StartOfDay(s.now())
	end := start.AddDate(0, 0, 1)

	meals, err := s.store.MealsBetween(ctx, userID, start, end)
	if err != nil {
		return Dashboard{}, err
	}
	workouts, err := s.store.WorkoutsBetween(ctx, userID, start, end)
	if err != nil {
		return Dashboard{}, err
	}
	sleep, err := s.store.SleepBetween(ctx, userID, start, end)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Date:     start.Format(time.DateOnly),
		Meals:    nonNil(meals),
		Workouts: nonNil(workouts),
	}
	if len(sleep) > 0 {
		d.Sleep = &sleep[0]
	}

	consumed := make([]float64, 0, len(meals))
	for _, m := range meals {
		consumed = append(consumed, deref(m.Calories))
	}
	burned := make([]float64, 0, len(workouts))
	for _, w := range workouts {
		burned = append(burned, deref(w.CaloriesBurned))
	}
	d.DayTotals = health.NewDayTotals(consumed, burned)
	return d, nil
}

// Weekly is the summary of the last health.WeekDays days and the advice
// derived from it.
type Weekly struct {
	Summary     health.WeeklySummary `json:"summary"`
	Suggestions []health.Suggestion  `json:"suggestions"`
}

func (s *Service) Weekly(ctx context.Context, userID int64) (Weekly, error) {
	t, err := s.store.WeeklyTotals(ctx, userID, health.WeekStart(s.now()))
	if err != nil {
		return Weekly{}, fmt.Errorf("weekly summary for user %d: %w", userID, err)
	}
	summary := health.WeeklySummary{
		TotalCalories:  t.TotalCalories,
		AvgMealProtein: t.AvgMealProtein,
		CaloriesBurned: t.CaloriesBurned,
		WorkoutCount:   t.WorkoutCount,
		AvgSleepHours:  t.AvgSleepHours,
		LatestBMI:      t.LatestBMI,
	}
	return Weekly{Summary: summary, Suggestions: health.Suggestions(summary)}, nil
}

// Analytics holds one point per day of the window, oldest first.
type Analytics struct {
	CaloriesConsumed []health.Point `json:"calories_consumed"`
	CaloriesBurned   []health.Point `json:"calories_burned"`
}

func (s *Service) Analytics(ctx context.Context, userID int64) (Analytics, error) {
	now := s.now()
	from := health.WeekStart(now)
	to := health.StartOfDay(now).AddDate(0, 0, 1)

	meals, err := s.store.MealCalories(ctx, userID, from, to)
	if err != nil {
		return Analytics{}, err
	}
	workouts, err := s.store.WorkoutBurn(ctx, userID, from, to)
	if err != nil {
		return Analytics{}, err
	}
	return Analytics{
		CaloriesConsumed: health.Series(now, s.byDay(meals)),
		CaloriesBurned:   health.Series(now, s.byDay(workouts)),
	}, nil
}

func (s *Service) byDay(values []database.DayValue) map[string]float64 {
	out := make(map[string]float64, health.WeekDays)
	for _, v := range values {
		out[v.LoggedAt.In(s.loc).Format(time.DateOnly)] += v.Value
	}
	return out
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
