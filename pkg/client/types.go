package client

import "time"

// Scope controls how far a confirmed exercise change propagates.
type Scope string

const (
	ScopeOneDay      Scope = "one-day"
	ScopeThisDayPlan Scope = "this-day-plan"
	ScopeAllWeeks    Scope = "all-weeks"
)

// Config holds the client configuration
type Config struct {
	BaseURL string        // Lifter server URL, e.g. http://localhost:8080
	APIKey  string        // API key for authentication
	Timeout time.Duration // Per-request timeout (default: 30 seconds)
}

// Exercise is one movement of a day.
type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Sets     int    `json:"sets"`
	Reps     string `json:"reps"`
}

// Day is one training day.
type Day struct {
	ID        string     `json:"id"`
	DayName   string     `json:"dayName"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// Week is an ordered list of days.
type Week struct {
	Days []Day `json:"days"`
}

// Plan is a plan template.
type Plan struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DurationWeeks int    `json:"durationWeeks"`
	Weeks         []Week `json:"weeks"`
	CreatedAt     int64  `json:"createdAt"`
}

// PlanSummary is one entry of ListPlans.
type PlanSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DurationWeeks     int    `json:"duration_weeks"`
	CreatedAt         int64  `json:"created_at"`
	Repetitions       int    `json:"repetitions"`
	CurrentRepetition int    `json:"current_repetition"`
	Selected          bool   `json:"selected"`
}

// Health is the server health report.
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	ParserModel string `json:"parser_model,omitempty"`
	PlanCount   int    `json:"plan_count"`
}

// SetLog is the recorded result of one set.
type SetLog struct {
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
}

// SetRow is one row of the logging grid.
type SetRow struct {
	TargetReps string `json:"targetReps"`
	Weight     string `json:"weight"`
	Reps       string `json:"reps"`
}

// ExerciseSets holds the grid rows of one exercise.
type ExerciseSets struct {
	ExerciseID string   `json:"exerciseId"`
	Sets       []SetRow `json:"sets"`
}

// Pending is a staged exercise change awaiting a scope.
type Pending struct {
	Kind      string     `json:"kind"`
	Exercises []Exercise `json:"exercises"`
	Index     *int       `json:"index,omitempty"`
}

// View is the session state. Positions are zero-based.
type View struct {
	Plan              *Plan          `json:"plan,omitempty"`
	Week              int            `json:"week"`
	DayIndex          int            `json:"dayIndex"`
	Repetition        int            `json:"repetition"`
	RepetitionLabel   string         `json:"repetitionLabel,omitempty"`
	Day               *Day           `json:"day,omitempty"`
	Sets              []ExerciseSets `json:"sets,omitempty"`
	EditingExerciseID string         `json:"editingExerciseId,omitempty"`
	Pending           *Pending       `json:"pending,omitempty"`
}

// Cursor moves the session. Nil fields are left unchanged.
type Cursor struct {
	Repetition *int `json:"repetition,omitempty"`
	Week       *int `json:"week,omitempty"`
	Day        *int `json:"day,omitempty"`
}

// Position is the cursor after clamping.
type Position struct {
	Repetition int `json:"repetition"`
	Week       int `json:"week"`
	Day        int `json:"day"`
}

// LogEntry addresses one set field.
type LogEntry struct {
	Week       int    `json:"week"`
	DayID      string `json:"day_id"`
	ExerciseID string `json:"exercise_id"`
	Set        int    `json:"set"`
	Field      string `json:"field"` // "weight" or "reps"
	Value      string `json:"value"`
}

// ExerciseInput holds the fields of an edited or added exercise.
type ExerciseInput struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
}
