package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when registering an email that exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store defines the persistence operations of the service.
// Every method accepts a context for cancellation and timeouts.
type Store interface {
	Ping(ctx context.Context) error

	// RunSQLMaintenance compacts the database file with VACUUM.
	RunSQLMaintenance(ctx context.Context) error

	// CreateUser inserts u, lower-casing its email, and sets its ID.
	CreateUser(ctx context.Context, u *User) error
	UserByID(ctx context.Context, id int64) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	// UpdateProfile writes the editable profile fields of u.
	UpdateProfile(ctx context.Context, u *User) error
	// UsersWithTelegram lists users that linked a Telegram chat.
	UsersWithTelegram(ctx context.Context) ([]User, error)

	AddMeal(ctx context.Context, m *Meal) error
	RecentMeals(ctx context.Context, userID int64, limit int) ([]Meal, error)
	MealsBetween(ctx context.Context, userID int64, from, to time.Time) ([]Meal, error)

	AddWorkout(ctx context.Context, w *Workout) error
	RecentWorkouts(ctx context.Context, userID int64, limit int) ([]Workout, error)
	WorkoutsBetween(ctx context.Context, userID int64, from, to time.Time) ([]Workout, error)

	AddSleep(ctx context.Context, r *SleepRecord) error
	RecentSleep(ctx context.Context, userID int64, limit int) ([]SleepRecord, error)
	SleepBetween(ctx context.Context, userID int64, from, to time.Time) ([]SleepRecord, error)

	AddBodyStats(ctx context.Context, b *BodyStats) error
	RecentBodyStats(ctx context.Context, userID int64, limit int) ([]BodyStats, error)

	// WeeklyTotals aggregates everything logged at or after since.
	WeeklyTotals(ctx context.Context, userID int64, since time.Time) (WeeklyTotals, error)
	// MealCalories and WorkoutBurn return one value per row in [from, to).
	MealCalories(ctx context.Context, userID int64, from, to time.Time) ([]DayValue, error)
	WorkoutBurn(ctx context.Context, userID int64, from, to time.Time) ([]DayValue, error)
}

const maxListLimit = 100

// sqlxStore implements Store on SQLite through sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewStore returns a Store backed by db. A nil clock uses wall time.
func NewStore(db *sqlx.DB, clock clockwork.Clock, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &sqlxStore{
		db:     db,
		clock:  clock,
		logger: logger.With("component", "store"),
	}
}

// dbTime normalizes timestamps so stored text sorts chronologically.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (s *sqlxStore) stamp(t time.Time) time.Time {
	if t.IsZero() {
		t = s.clock.Now()
	}
	return dbTime(t)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context done before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")
	start := s.clock.Now()

	// VACUUM cannot run inside a transaction.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case isContextErr(err):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) interrupted: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed", "duration", s.clock.Since(start))
	return nil
}

// insert runs a named INSERT and returns the new row id.
func (s *sqlxStore) insert(ctx context.Context, what, query string, arg any) (int64, error) {
	res, err := s.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s id: %w", what, err)
	}
	s.logger.DebugContext(ctx, "Row inserted", "table", what, "id", id)
	return id, nil
}

// selectRows scans query results into T and moves every timestamp to UTC,
// since the sqlite driver hands them back in the local zone.
func selectRows[T any, PT interface {
	*T
	toUTC()
}](ctx context.Context, s *sqlxStore, what, query string, args ...any) ([]T, error) {
	var out []T
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		if !isContextErr(err) {
			s.logger.ErrorContext(ctx, "Query failed", "table", what, "error", err)
		}
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	for i := range out {
		PT(&out[i]).toUTC()
	}
	return out, nil
}

// --- users ---

const userColumns = `id, name, email, password_hash, gender, age, height_cm, weight_kg,
	telegram_chat_id, created_at, updated_at`

func (s *sqlxStore) CreateUser(ctx context.Context, u *User) error {
	if u == nil {
		return errors.New("cannot create nil user")
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := s.stamp(time.Time{})
	u.CreatedAt, u.UpdatedAt = now, now

	id, err := s.insert(ctx, "users", `
		INSERT INTO users (name, email, password_hash, gender, age, height_cm, weight_kg,
			telegram_chat_id, created_at, updated_at)
		VALUES (:name, :email, :password_hash, :gender, :age, :height_cm, :weight_kg,
			:telegram_chat_id, :created_at, :updated_at)`, u)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		s.logger.ErrorContext(ctx, "Error creating user", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = id
	return nil
}

func (s *sqlxStore) getUser(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		if !isContextErr(err) {
			s.logger.ErrorContext(ctx, "Error loading user", "error", err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	u.toUTC()
	return &u, nil
}

func (s *sqlxStore) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *sqlxStore) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *sqlxStore) UpdateProfile(ctx context.Context, u *User) error {
	if u == nil {
		return errors.New("cannot update nil user")
	}
	u.UpdatedAt = s.stamp(time.Time{})
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE users SET name = :name, gender = :gender, age = :age, height_cm = :height_cm,
			weight_kg = :weight_kg, telegram_chat_id = :telegram_chat_id, updated_at = :updated_at
		WHERE id = :id`, u)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating profile", "user_id", u.ID, "error", err)
		return fmt.Errorf("failed to update profile for user %d: %w", u.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlxStore) UsersWithTelegram(ctx context.Context) ([]User, error) {
	return selectRows[User](ctx, s, "users",
		"SELECT "+userColumns+" FROM users WHERE telegram_chat_id IS NOT NULL ORDER BY id")
}

// --- meals ---

func (s *sqlxStore) AddMeal(ctx context.Context, m *Meal) error {
	m.LoggedAt = s.stamp(m.LoggedAt)
	id, err := s.insert(ctx, "meals", `
		INSERT INTO meals (user_id, logged_at, meal_type, food_items, calories, protein_g, carbs_g, fats_g)
		VALUES (:user_id, :logged_at, :meal_type, :food_items, :calories, :protein_g, :carbs_g, :fats_g)`, m)
	if err != nil {
		return fmt.Errorf("failed to add meal for user %d: %w", m.UserID, err)
	}
	m.ID = id
	return nil
}

const mealColumns = `id, user_id, logged_at, meal_type, food_items, calories, protein_g, carbs_g, fats_g`

func (s *sqlxStore) RecentMeals(ctx context.Context, userID int64, limit int) ([]Meal, error) {
	return selectRows[Meal](ctx, s, "meals",
		"SELECT "+mealColumns+" FROM meals WHERE user_id = ? ORDER BY logged_at DESC, id DESC LIMIT ?",
		userID, clampLimit(limit))
}

func (s *sqlxStore) MealsBetween(ctx context.Context, userID int64, from, to time.Time) ([]Meal, error) {
	return selectRows[Meal](ctx, s, "meals",
		"SELECT "+mealColumns+" FROM meals WHERE user_id = ? AND logged_at >= ? AND logged_at < ? ORDER BY logged_at, id",
		userID, dbTime(from), dbTime(to))
}

// --- workouts ---

func (s *sqlxStore) AddWorkout(ctx context.Context, w *Workout) error {
	w.LoggedAt = s.stamp(w.LoggedAt)
	id, err := s.insert(ctx, "workouts", `
		INSERT INTO workouts (user_id, logged_at, workout_type, duration_minutes, calories_burned, notes)
		VALUES (:user_id, :logged_at, :workout_type, :duration_minutes, :calories_burned, :notes)`, w)
	if err != nil {
		return fmt.Errorf("failed to add workout for user %d: %w", w.UserID, err)
	}
	w.ID = id
	return nil
}

const workoutColumns = `id, user_id, logged_at, workout_type, duration_minutes, calories_burned, notes`

func (s *sqlxStore) RecentWorkouts(ctx context.Context, userID int64, limit int) ([]Workout, error) {
	return selectRows[Workout](ctx, s, "workouts",
		"SELECT "+workoutColumns+" FROM workouts WHERE user_id = ? ORDER BY logged_at DESC, id DESC LIMIT ?",
		userID, clampLimit(limit))
}

func (s *sqlxStore) WorkoutsBetween(ctx context.Context, userID int64, from, to time.Time) ([]Workout, error) {
	return selectRows[Workout](ctx, s, "workouts",
		"SELECT "+workoutColumns+" FROM workouts WHERE user_id = ? AND logged_at >= ? AND logged_at < ? ORDER BY logged_at, id",
		userID, dbTime(from), dbTime(to))
}

// --- sleep ---

func (s *sqlxStore) AddSleep(ctx context.Context, r *SleepRecord) error {
	r.LoggedAt = s.stamp(r.LoggedAt)
	id, err := s.insert(ctx, "sleep_records", `
		INSERT INTO sleep_records (user_id, logged_at, sleep_hours, sleep_quality, bedtime, wakeup_time)
		VALUES (:user_id, :logged_at, :sleep_hours, :sleep_quality, :bedtime, :wakeup_time)`, r)
	if err != nil {
		return fmt.Errorf("failed to add sleep record for user %d: %w", r.UserID, err)
	}
	r.ID = id
	return nil
}

const sleepColumns = `id, user_id, logged_at, sleep_hours, sleep_quality, bedtime, wakeup_time`

func (s *sqlxStore) RecentSleep(ctx context.Context, userID int64, limit int) ([]SleepRecord, error) {
	return selectRows[SleepRecord](ctx, s, "sleep_records",
		"SELECT "+sleepColumns+" FROM sleep_records WHERE user_id = ? ORDER BY logged_at DESC, id DESC LIMIT ?",
		userID, clampLimit(limit))
}

func (s *sqlxStore) SleepBetween(ctx context.Context, userID int64, from, to time.Time) ([]SleepRecord, error) {
	return selectRows[SleepRecord](ctx, s, "sleep_records",
		"SELECT "+sleepColumns+" FROM sleep_records WHERE user_id = ? AND logged_at >= ? AND logged_at < ? ORDER BY logged_at, id",
		userID, dbTime(from), dbTime(to))
}

// --- body stats ---

func (s *sqlxStore) AddBodyStats(ctx context.Context, b *BodyStats) error {
	b.LoggedAt = s.stamp(b.LoggedAt)
	id, err := s.insert(ctx, "body_stats", `
		INSERT INTO body_stats (user_id, logged_at, weight_kg, bmi, body_fat_percent, muscle_mass_kg)
		VALUES (:user_id, :logged_at, :weight_kg, :bmi, :body_fat_percent, :muscle_mass_kg)`, b)
	if err != nil {
		return fmt.Errorf("failed to add body stats for user %d: %w", b.UserID, err)
	}
	b.ID = id
	return nil
}

func (s *sqlxStore) RecentBodyStats(ctx context.Context, userID int64, limit int) ([]BodyStats, error) {
	return selectRows[BodyStats](ctx, s, "body_stats", `
		SELECT id, user_id, logged_at, weight_kg, bmi, body_fat_percent, muscle_mass_kg
		FROM body_stats WHERE user_id = ? ORDER BY logged_at DESC, id DESC LIMIT ?`,
		userID, clampLimit(limit))
}

// --- aggregates ---

const weeklyTotalsQuery = `
SELECT
	(SELECT COALESCE(SUM(calories), 0) FROM meals WHERE user_id = ? AND logged_at >= ?) AS total_calories,
	(SELECT COALESCE(AVG(protein_g), 0) FROM meals WHERE user_id = ? AND logged_at >= ?) AS avg_meal_protein,
	(SELECT COALESCE(SUM(calories_burned), 0) FROM workouts WHERE user_id = ? AND logged_at >= ?) AS calories_burned,
	(SELECT COUNT(*) FROM workouts WHERE user_id = ? AND logged_at >= ?) AS workout_count,
	(SELECT COALESCE(AVG(sleep_hours), 0) FROM sleep_records WHERE user_id = ? AND logged_at >= ?) AS avg_sleep_hours,
	(SELECT bmi FROM body_stats WHERE user_id = ? AND bmi IS NOT NULL
		ORDER BY logged_at DESC, id DESC LIMIT 1) AS latest_bmi`

func (s *sqlxStore) WeeklyTotals(ctx context.Context, userID int64, since time.Time) (WeeklyTotals, error) {
	var t WeeklyTotals
	from := dbTime(since)
	err := s.db.GetContext(ctx, &t, weeklyTotalsQuery,
		userID, from, userID, from, userID, from, userID, from, userID, from, userID)
	if err != nil {
		if !isContextErr(err) {
			s.logger.ErrorContext(ctx, "Error computing weekly totals", "user_id", userID, "error", err)
		}
		return WeeklyTotals{}, fmt.Errorf("failed to compute weekly totals for user %d: %w", userID, err)
	}
	return t, nil
}

func (s *sqlxStore) MealCalories(ctx context.Context, userID int64, from, to time.Time) ([]DayValue, error) {
	return selectRows[DayValue](ctx, s, "meals", `
		SELECT logged_at, COALESCE(calories, 0) AS value FROM meals
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ? ORDER BY logged_at`,
		userID, dbTime(from), dbTime(to))
}

func (s *sqlxStore) WorkoutBurn(ctx context.Context, userID int64, from, to time.Time) ([]DayValue, error) {
	return selectRows[DayValue](ctx, s, "workouts", `
		SELECT logged_at, COALESCE(calories_burned, 0) AS value FROM workouts
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ? ORDER BY logged_at`,
		userID, dbTime(from), dbTime(to))
}
