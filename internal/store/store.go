// Package store provides SQLite persistence for the reference tool
// executor: food-log entries, saved facts, reminders, and plan targets.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// Store wraps the SQLite database behind the tools.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS food_entries (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			calories REAL NOT NULL,
			protein REAL DEFAULT 0,
			carbs REAL DEFAULT 0,
			fat REAL DEFAULT 0,
			quantity TEXT,
			meal_type TEXT,
			logged_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_food_entries_logged_at ON food_entries(logged_at)`,
		`CREATE TABLE IF NOT EXISTS user_facts (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			message TEXT NOT NULL,
			trigger_at DATETIME,
			schedule TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			duration TEXT,
			details TEXT,
			performed_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			fields TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// FoodEntry is one logged food item.
type FoodEntry struct {
	ID       string
	Name     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Quantity string
	MealType string
	LoggedAt time.Time
}

// AddFoodEntry inserts a food-log entry, assigning an ID when absent.
func (s *Store) AddFoodEntry(ctx context.Context, e *FoodEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.LoggedAt.IsZero() {
		e.LoggedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO food_entries (id, name, calories, protein, carbs, fat, quantity, meal_type, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Calories, e.Protein, e.Carbs, e.Fat, e.Quantity, e.MealType, e.LoggedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert food entry: %w", err)
	}
	return nil
}

// FoodLogForDay returns the entries logged on the given day, oldest first.
func (s *Store) FoodLogForDay(ctx context.Context, day time.Time) ([]FoodEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, calories, protein, carbs, fat, quantity, meal_type, logged_at
		 FROM food_entries WHERE logged_at >= ? AND logged_at < ? ORDER BY logged_at ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("query food entries: %w", err)
	}
	defer rows.Close()

	var entries []FoodEntry
	for rows.Next() {
		var e FoodEntry
		var quantity, mealType sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Calories, &e.Protein, &e.Carbs, &e.Fat, &quantity, &mealType, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		e.Quantity = quantity.String
		e.MealType = mealType.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateFoodEntry applies field changes to an existing entry. Only known
// columns are updated; unknown keys are ignored.
func (s *Store) UpdateFoodEntry(ctx context.Context, id string, fields map[string]any) error {
	cols := map[string]string{
		"name":      "name",
		"calories":  "calories",
		"protein":   "protein",
		"carbs":     "carbs",
		"fat":       "fat",
		"quantity":  "quantity",
		"meal_type": "meal_type",
	}
	set := ""
	args := []any{}
	for key, col := range cols {
		val, ok := fields[key]
		if !ok {
			continue
		}
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, val)
	}
	if set == "" {
		return fmt.Errorf("no updatable fields")
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE food_entries SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update food entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("food entry not found: %s", id)
	}
	return nil
}

// SaveFact persists one saved-fact string. Duplicate contents are allowed;
// deduplication policy belongs to callers.
func (s *Store) SaveFact(ctx context.Context, content string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_facts (id, content, created_at) VALUES (?, ?, ?)`,
		id, content, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert fact: %w", err)
	}
	return id, nil
}

// ListFacts returns saved facts, newest first, up to limit.
func (s *Store) ListFacts(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM user_facts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var facts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		facts = append(facts, content)
	}
	return facts, rows.Err()
}

// Reminder is one stored reminder, either one-shot (TriggerAt) or
// recurring (Schedule, a cron expression).
type Reminder struct {
	ID        string
	Message   string
	TriggerAt time.Time
	Schedule  string
	CreatedAt time.Time
}

// CreateReminder inserts a reminder, assigning an ID when absent.
func (s *Store) CreateReminder(ctx context.Context, r *Reminder) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	var trigger any
	if !r.TriggerAt.IsZero() {
		trigger = r.TriggerAt.UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, message, trigger_at, schedule, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Message, trigger, r.Schedule, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

// ListReminders returns all reminders, oldest first.
func (s *Store) ListReminders(ctx context.Context) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message, trigger_at, schedule, created_at FROM reminders ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var r Reminder
		var trigger sql.NullTime
		var schedule sql.NullString
		if err := rows.Scan(&r.ID, &r.Message, &trigger, &schedule, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		r.TriggerAt = trigger.Time
		r.Schedule = schedule.String
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// Workout is one recorded workout. Details holds schema-free extras
// such as distance or perceived effort.
type Workout struct {
	ID          string
	Name        string
	Duration    string
	Details     map[string]any
	PerformedAt time.Time
}

// LogWorkout records a completed workout, assigning an ID when absent.
// Called once the user confirms a workout-log suggestion.
func (s *Store) LogWorkout(ctx context.Context, w *Workout) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.PerformedAt.IsZero() {
		w.PerformedAt = time.Now()
	}
	details, err := json.Marshal(w.Details)
	if err != nil {
		return fmt.Errorf("encode workout details: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workouts (id, name, duration, details, performed_at) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Duration, string(details), w.PerformedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

// ListWorkouts returns recorded workouts, newest first, up to limit.
func (s *Store) ListWorkouts(ctx context.Context, limit int) ([]Workout, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, duration, details, performed_at FROM workouts
		 ORDER BY performed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var w Workout
		var duration, details sql.NullString
		if err := rows.Scan(&w.ID, &w.Name, &duration, &details, &w.PerformedAt); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		w.Duration = duration.String
		if details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &w.Details); err != nil {
				return nil, fmt.Errorf("decode workout details: %w", err)
			}
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// UpdatePlan stores the user's plan targets as a single JSON document.
func (s *Store) UpdatePlan(ctx context.Context, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, fields, updated_at) VALUES ('current', ?, ?)
		 ON CONFLICT(id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

// GetPlan returns the stored plan targets, or an empty map when none are
// stored yet.
func (s *Store) GetPlan(ctx context.Context) (map[string]any, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT fields FROM plans WHERE id = 'current'`).Scan(&data)
	if err == sql.ErrNoRows {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query plan: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return fields, nil
}
