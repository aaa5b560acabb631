package database

import "time"

// User is a registered account. Nullable profile fields are pointers.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Gender         string    `db:"gender" json:"gender,omitempty"`
	Age            *int      `db:"age" json:"age,omitempty"`
	HeightCm       *float64  `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg       *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	TelegramChatID *int64    `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Meal is one logged meal. Macros are nil when neither given nor estimated.
type Meal struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	LoggedAt  time.Time `db:"logged_at" json:"logged_at"`
	MealType  string    `db:"meal_type" json:"meal_type"`
	FoodItems string    `db:"food_items" json:"food_items"`
	Calories  *float64  `db:"calories" json:"calories"`
	ProteinG  *float64  `db:"protein_g" json:"protein_g"`
	CarbsG    *float64  `db:"carbs_g" json:"carbs_g"`
	FatsG     *float64  `db:"fats_g" json:"fats_g"`
}

type Workout struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"-"`
	LoggedAt        time.Time `db:"logged_at" json:"logged_at"`
	WorkoutType     string    `db:"workout_type" json:"workout_type"`
	DurationMinutes *int      `db:"duration_minutes" json:"duration_minutes"`
	CaloriesBurned  *float64  `db:"calories_burned" json:"calories_burned"`
	Notes           string    `db:"notes" json:"notes"`
}

// SleepRecord holds one night. Bedtime and WakeupTime are "HH:MM" or empty.
type SleepRecord struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"-"`
	LoggedAt     time.Time `db:"logged_at" json:"logged_at"`
	SleepHours   *float64  `db:"sleep_hours" json:"sleep_hours"`
	SleepQuality string    `db:"sleep_quality" json:"sleep_quality"`
	Bedtime      string    `db:"bedtime" json:"bedtime"`
	WakeupTime   string    `db:"wakeup_time" json:"wakeup_time"`
}

type BodyStats struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"-"`
	LoggedAt       time.Time `db:"logged_at" json:"logged_at"`
	WeightKg       *float64  `db:"weight_kg" json:"weight_kg"`
	BMI            *float64  `db:"bmi" json:"bmi"`
	BodyFatPercent *float64  `db:"body_fat_percent" json:"body_fat_percent"`
	MuscleMassKg   *float64  `db:"muscle_mass_kg" json:"muscle_mass_kg"`
}

// WeeklyTotals are the raw aggregates behind the weekly suggestions.
// AvgMealProtein ignores meals without a protein value and LatestBMI is
// taken from the most recent body stats regardless of the window.
type WeeklyTotals struct {
	TotalCalories  float64  `db:"total_calories"`
	AvgMealProtein float64  `db:"avg_meal_protein"`
	CaloriesBurned float64  `db:"calories_burned"`
	WorkoutCount   int      `db:"workout_count"`
	AvgSleepHours  float64  `db:"avg_sleep_hours"`
	LatestBMI      *float64 `db:"latest_bmi"`
}

// DayValue is a per-row amount used to build daily series.
type DayValue struct {
	LoggedAt time.Time `db:"logged_at"`
	Value    float64   `db:"value"`
}

func (u *User) toUTC() {
	u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
}

func (m *Meal) toUTC()        { m.LoggedAt = m.LoggedAt.UTC() }
func (w *Workout) toUTC()     { w.LoggedAt = w.LoggedAt.UTC() }
func (r *SleepRecord) toUTC() { r.LoggedAt = r.LoggedAt.UTC() }
func (b *BodyStats) toUTC()   { b.LoggedAt = b.LoggedAt.UTC() }
func (d *DayValue) toUTC()    { d.LoggedAt = d.LoggedAt.UTC() }
