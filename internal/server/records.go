package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/edgard/lifesync/internal/database"
	"github.com/edgard/lifesync/internal/health"
)

const defaultListLimit = 10

func listLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	return n
}

// listed writes rows, or an empty array when there are none.
func listed[T any](w http.ResponseWriter, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	writeJSON(w, http.StatusOK, rows)
}

type mealRequest struct {
	LoggedAt  *time.Time `json:"logged_at"`
	MealType  string     `json:"meal_type"  validate:"required,max=50"`
	FoodItems string     `json:"food_items" validate:"max=2000"`
	Calories  *float64   `json:"calories"   validate:"omitempty,gte=0"`
	ProteinG  *float64   `json:"protein_g"  validate:"omitempty,gte=0"`
	CarbsG    *float64   `json:"carbs_g"    validate:"omitempty,gte=0"`
	FatsG     *float64   `json:"fats_g"     validate:"omitempty,gte=0"`
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	m := &database.Meal{
		UserID:    userID(r.Context()),
		MealType:  req.MealType,
		FoodItems: req.FoodItems,
		Calories:  req.Calories,
		ProteinG:  req.ProteinG,
		CarbsG:    req.CarbsG,
		FatsG:     req.FatsG,
	}
	if req.LoggedAt != nil {
		m.LoggedAt = *req.LoggedAt
	}
	s.estimateMacros(r, m)

	if err := s.store.AddMeal(r.Context(), m); err != nil {
		s.internalError(w, r, "add meal", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// estimateMacros fills missing macros from the food description when the
// parser recognizes at least one item.
func (s *Server) estimateMacros(r *http.Request, m *database.Meal) {
	if m.FoodItems == "" || (m.Calories != nil && m.ProteinG != nil && m.CarbsG != nil && m.FatsG != nil) {
		return
	}
	a := s.parser.Analyze(m.FoodItems)
	if len(a.Items) == 0 {
		return
	}
	fill := func(dst **float64, v float64) {
		if *dst == nil {
			*dst = &v
		}
	}
	fill(&m.Calories, a.Totals.Calories)
	fill(&m.ProteinG, a.Totals.Protein)
	fill(&m.CarbsG, a.Totals.Carbs)
	fill(&m.FatsG, a.Totals.Fat)
	s.log.DebugContext(r.Context(), "Estimated meal macros", "matched", len(a.Items), "unmatched", len(a.Unmatched))
}

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.RecentMeals(r.Context(), userID(r.Context()), listLimit(r))
	if err != nil {
		s.internalError(w, r, "list meals", err)
		return
	}
	listed(w, rows)
}

type workoutRequest struct {
	LoggedAt        *time.Time `json:"logged_at"`
	WorkoutType     string     `json:"workout_type"     validate:"required,max=100"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=0,lte=1440"`
	CaloriesBurned  *float64   `json:"calories_burned"  validate:"omitempty,gte=0"`
	Notes           string     `json:"notes"            validate:"max=2000"`
}

func (s *Server) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	wo := &database.Workout{
		UserID:          userID(r.Context()),
		WorkoutType:     req.WorkoutType,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
	}
	if req.LoggedAt != nil {
		wo.LoggedAt = *req.LoggedAt
	}
	if err := s.store.AddWorkout(r.Context(), wo); err != nil {
		s.internalError(w, r, "add workout", err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.RecentWorkouts(r.Context(), userID(r.Context()), listLimit(r))
	if err != nil {
		s.internalError(w, r, "list workouts", err)
		return
	}
	listed(w, rows)
}

type sleepRequest struct {
	LoggedAt     *time.Time `json:"logged_at"`
	SleepHours   *float64   `json:"sleep_hours"   validate:"omitempty,gte=0,lte=24"`
	SleepQuality string     `json:"sleep_quality" validate:"max=50"`
	Bedtime      string     `json:"bedtime"       validate:"omitempty,datetime=15:04"`
	WakeupTime   string     `json:"wakeup_time"   validate:"omitempty,datetime=15:04"`
}

func (s *Server) handleAddSleep(w http.ResponseWriter, r *http.Request) {
	var req sleepRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	hours, err := health.ResolveSleepHours(req.Bedtime, req.WakeupTime, req.SleepHours)
	if err != nil {
		badRequest(w, err)
		return
	}
	rec := &database.SleepRecord{
		UserID:       userID(r.Context()),
		SleepHours:   hours,
		SleepQuality: req.SleepQuality,
		Bedtime:      req.Bedtime,
		WakeupTime:   req.WakeupTime,
	}
	if req.LoggedAt != nil {
		rec.LoggedAt = *req.LoggedAt
	}
	if err := s.store.AddSleep(r.Context(), rec); err != nil {
		s.internalError(w, r, "add sleep", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListSleep(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.RecentSleep(r.Context(), userID(r.Context()), listLimit(r))
	if err != nil {
		s.internalError(w, r, "list sleep", err)
		return
	}
	listed(w, rows)
}

type bodyStatsRequest struct {
	LoggedAt       *time.Time `json:"logged_at"`
	WeightKg       *float64   `json:"weight_kg"        validate:"omitempty,gt=0,lt=700"`
	BodyFatPercent *float64   `json:"body_fat_percent" validate:"omitempty,gte=0,lte=100"`
	MuscleMassKg   *float64   `json:"muscle_mass_kg"   validate:"omitempty,gte=0,lt=700"`
}

func (s *Server) handleAddBodyStats(w http.ResponseWriter, r *http.Request) {
	var req bodyStatsRequest
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.WeightKg == nil && req.BodyFatPercent == nil && req.MuscleMassKg == nil {
		badRequest(w, errors.New("at least one measurement is required"))
		return
	}
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	b := &database.BodyStats{
		UserID:         u.ID,
		WeightKg:       req.WeightKg,
		BodyFatPercent: req.BodyFatPercent,
		MuscleMassKg:   req.MuscleMassKg,
	}
	if req.LoggedAt != nil {
		b.LoggedAt = *req.LoggedAt
	}
	if req.WeightKg != nil && u.HeightCm != nil {
		if bmi, ok := health.BMI(*req.WeightKg, *u.HeightCm); ok {
			b.BMI = &bmi
		}
	}
	if err := s.store.AddBodyStats(r.Context(), b); err != nil {
		s.internalError(w, r, "add body stats", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBodyStats(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.RecentBodyStats(r.Context(), userID(r.Context()), listLimit(r))
	if err != nil {
		s.internalError(w, r, "list body stats", err)
		return
	}
	listed(w, rows)
}
