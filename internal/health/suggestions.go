package health

import (
	"fmt"
	"math"
	"strings"
)

type SuggestionType string

const (
	Warning SuggestionType = "warning"
	Info    SuggestionType = "info"
	Success SuggestionType = "success"
)

// Suggestion is one piece of advice.
type Suggestion struct {
	Type    SuggestionType `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Action  string         `json:"action"`
}

// WeeklySummary aggregates the last WeekDays days for one user.
// LatestBMI is nil when no body stats carry a BMI.
type WeeklySummary struct {
	TotalCalories  float64  `json:"total_calories"`
	AvgMealProtein float64  `json:"avg_meal_protein"`
	CaloriesBurned float64  `json:"calories_burned"`
	WorkoutCount   int      `json:"workout_count"`
	AvgSleepHours  float64  `json:"avg_sleep_hours"`
	LatestBMI      *float64 `json:"latest_bmi"`
}

// DailyCalories is the average intake per day of the window.
func (s WeeklySummary) DailyCalories() float64 { return s.TotalCalories / WeekDays }

// DailyBurned is the average workout burn per day of the window.
func (s WeeklySummary) DailyBurned() float64 { return s.CaloriesBurned / WeekDays }

// Suggestions applies the threshold rules in a fixed order. Zero protein
// and zero sleep mean "not logged" and produce no finding. When nothing
// fires a single success suggestion is returned.
func Suggestions(s WeeklySummary) []Suggestion {
	var out []Suggestion
	add := func(t SuggestionType, title, action, format string, args ...any) {
		out = append(out, Suggestion{Type: t, Title: title, Message: fmt.Sprintf(format, args...), Action: action})
	}

	daily := s.DailyCalories()
	burned := s.DailyBurned()
	net := daily - burned

	switch {
	case daily < 1200:
		add(Warning, "Low Calorie Intake",
			"Add healthy snacks like nuts, fruits, or yogurt between meals.",
			"Your average daily intake is %.0f calories. Consider increasing to at least 1200 calories for proper nutrition.", daily)
	case daily > 2500:
		add(Info, "High Calorie Intake",
			"Focus on nutrient-dense, lower-calorie foods like vegetables and lean proteins.",
			"Your average daily intake is %.0f calories. Consider portion control if weight loss is your goal.", daily)
	}

	if s.AvgMealProtein > 0 && s.AvgMealProtein < 50 {
		add(Warning, "Low Protein Intake",
			"Include more chicken, fish, eggs, paneer, or dal in your meals.",
			"Your average protein intake is %.1fg daily. Aim for at least 1.2g per kg body weight.", s.AvgMealProtein)
	}

	if s.WorkoutCount < 3 {
		add(Info, "Increase Physical Activity",
			"Try 30-minute walks, home workouts, or join a fitness class.",
			"You worked out %d times this week. Aim for at least 3-4 sessions weekly.", s.WorkoutCount)
	}

	if burned < 200 {
		add(Info, "Low Calorie Burn",
			"Add cardio exercises like running, cycling, or swimming to your routine.",
			"Your average daily calorie burn is %.0f. Increase workout intensity or duration.", burned)
	}

	switch sleep := s.AvgSleepHours; {
	case sleep > 0 && sleep < 7:
		add(Warning, "Insufficient Sleep",
			"Set a consistent bedtime, avoid screens before sleep, and create a relaxing environment.",
			"Your average sleep is %.1f hours. Aim for 7-9 hours for optimal health.", sleep)
	case sleep > 9:
		add(Info, "Excessive Sleep",
			"Consider consulting a healthcare provider if you consistently need more than 9 hours.",
			"Your average sleep is %.1f hours. This might indicate underlying health issues.", sleep)
	}

	if s.LatestBMI != nil && *s.LatestBMI > 0 {
		switch bmi := *s.LatestBMI; {
		case bmi < 18.5:
			add(Warning, "Underweight",
				"Increase calorie intake with nuts, healthy oils, and protein-rich foods.",
				"Your BMI is %.1f. Consider gaining weight through healthy foods.", bmi)
		case bmi > 25:
			add(Info, "Weight Management",
				"Focus on portion control, regular exercise, and sustainable lifestyle changes.",
				"Your BMI is %.1f. Consider a balanced approach to weight management.", bmi)
		}
	}

	switch {
	case net > 500:
		add(Info, "Calorie Surplus",
			"Increase physical activity or reduce portion sizes if weight maintenance is your goal.",
			"You have a daily surplus of %.0f calories. This may lead to weight gain.", net)
	case net < -500:
		add(Warning, "Large Calorie Deficit",
			"Consider increasing calorie intake slightly for sustainable weight loss.",
			"You have a daily deficit of %.0f calories. This may be too aggressive.", math.Abs(net))
	}

	if len(out) == 0 {
		out = append(out, Suggestion{
			Type:    Success,
			Title:   "Great Progress!",
			Message: "Your health metrics look good. Keep up the excellent work!",
			Action:  "Continue your current routine and consider setting new fitness goals.",
		})
	}
	return out
}

var digestIcons = map[SuggestionType]string{
	Warning: "⚠️",
	Info:    "ℹ️",
	Success: "✅",
}

// FormatDigest renders suggestions as a plain-text weekly message.
func FormatDigest(name string, s WeeklySummary, suggestions []Suggestion) string {
	var sb strings.Builder
	if name != "" {
		fmt.Fprintf(&sb, "Hi %s! Here is your LifeSync week.\n\n", name)
	} else {
		sb.WriteString("Here is your LifeSync week.\n\n")
	}
	fmt.Fprintf(&sb, "Calories: %.0f/day eaten, %.0f/day burned\n", s.DailyCalories(), s.DailyBurned())
	fmt.Fprintf(&sb, "Workouts: %d\n", s.WorkoutCount)
	if s.AvgSleepHours > 0 {
		fmt.Fprintf(&sb, "Sleep: %.1f h average\n", s.AvgSleepHours)
	}
	for _, sg := range suggestions {
		fmt.Fprintf(&sb, "\n%s %s\n%s\n→ %s\n", digestIcons[sg.Type], sg.Title, sg.Message, sg.Action)
	}
	return sb.String()
}
