// Package health derives metrics and rule-based suggestions from logged
// meals, workouts, sleep and body measurements.
package health

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidClock means a bedtime or wake-up time is not HH:MM.
var ErrInvalidClock = errors.New("time must be HH:MM")

// WeekDays is the length of the summary and analytics window, today included.
const WeekDays = 7

// ParseClock parses an "HH:MM" wall-clock time into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// SleepHours returns the time between bedtime and wakeup. A wake-up time
// that is not after bedtime is taken to be on the next day.
func SleepHours(bedtime, wakeup string) (float64, error) {
	bed, err := ParseClock(bedtime)
	if err != nil {
		return 0, err
	}
	wake, err := ParseClock(wakeup)
	if err != nil {
		return 0, err
	}
	if wake <= bed {
		wake += 24 * 60
	}
	return float64(wake-bed) / 60, nil
}

// ResolveSleepHours prefers the bedtime/wakeup pair and falls back to the
// explicit value. It returns nil when neither is available.
func ResolveSleepHours(bedtime, wakeup string, explicit *float64) (*float64, error) {
	if bedtime != "" && wakeup != "" {
		h, err := SleepHours(bedtime, wakeup)
		if err != nil {
			return nil, err
		}
		return &h, nil
	}
	return explicit, nil
}

// BMI is weight over height in metres squared, rounded to two decimals.
// ok is false when either input is missing or non-positive.
func BMI(weightKg, heightCm float64) (bmi float64, ok bool) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, false
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*100) / 100, true
}

// DayTotals is the calorie balance for one day.
type DayTotals struct {
	Consumed float64 `json:"calories_consumed"`
	Burned   float64 `json:"calories_burned"`
	Net      float64 `json:"net_calories"`
}

// NewDayTotals sums meal calories and workout burn.
func NewDayTotals(mealCalories, burned []float64) DayTotals {
	var d DayTotals
	for _, c := range mealCalories {
		d.Consumed += c
	}
	for _, b := range burned {
		d.Burned += b
	}
	d.Net = d.Consumed - d.Burned
	return d
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart is midnight of the first day of the window ending today.
func WeekStart(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, -(WeekDays - 1))
}

// Point is one day of a series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series lays out per-day totals (keyed by YYYY-MM-DD) over the window
// ending on now, filling missing days with zero.
func Series(now time.Time, byDay map[string]float64) []Point {
	start := WeekStart(now)
	out := make([]Point, WeekDays)
	for i := range out {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		out[i] = Point{Date: day, Value: byDay[day]}
	}
	return out
}
