// Package types holds the request and response bodies of the HTTP API.
package types

import (
	"github.com/hyperengineering/lifter/internal/workout"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	ParserModel string `json:"parser_model,omitempty"`
	PlanCount   int    `json:"plan_count"`
}

// PlanSummary is one row of GET /plans.
type PlanSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DurationWeeks     int    `json:"duration_weeks"`
	CreatedAt         int64  `json:"created_at"`
	Repetitions       int    `json:"repetitions"`
	CurrentRepetition int    `json:"current_repetition"`
	Selected          bool   `json:"selected"`
}

// NewPlanSummary summarizes p. t may be nil when the plan has no tracker.
func NewPlanSummary(p workout.WorkoutPlan, t *workout.Tracker, selected bool) PlanSummary {
	s := PlanSummary{
		ID:            p.ID,
		Name:          p.Name,
		DurationWeeks: p.DurationWeeks,
		CreatedAt:     p.CreatedAt,
		Selected:      selected,
	}
	if t != nil {
		s.Repetitions = len(t.Repetitions)
		s.CurrentRepetition = t.CurrentRepetitionIndex
	}
	return s
}

// ListPlansResponse is returned by GET /plans.
type ListPlansResponse struct {
	Plans []PlanSummary `json:"plans"`
}

// ImportFile is an uploaded document, base64 encoded.
type ImportFile struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

// ImportRequest is the body of POST /plans/import. At least one of Text and
// File must be present.
type ImportRequest struct {
	Text string      `json:"text,omitempty"`
	File *ImportFile `json:"file,omitempty"`
}

// CursorRequest is the body of PUT /session/cursor. Absent fields are left
// unchanged. Repetition is applied first, then week, then day.
type CursorRequest struct {
	Repetition *int `json:"repetition,omitempty"`
	Week       *int `json:"week,omitempty"`
	Day        *int `json:"day,omitempty"`
}

// CursorResponse reports the cursor after clamping.
type CursorResponse struct {
	Repetition int `json:"repetition"`
	Week       int `json:"week"`
	Day        int `json:"day"`
}

// RenameRequest is the body of PUT /session/repetition/name.
type RenameRequest struct {
	Name string `json:"name"`
}

// RenameResponse reports whether the name changed. A blank name never does.
type RenameResponse struct {
	Renamed bool   `json:"renamed"`
	Label   string `json:"label"`
}

// LogRequest is the body of PUT /session/logs.
type LogRequest struct {
	Week       int    `json:"week"`
	DayID      string `json:"day_id"`
	ExerciseID string `json:"exercise_id"`
	Set        int    `json:"set"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

// ExerciseRequest is the body of POST /session/pending/edit and
// POST /session/pending/add. ExerciseID is only read by edit.
type ExerciseRequest struct {
	ExerciseID string `json:"exercise_id,omitempty"`
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	Reps       string `json:"reps"`
}

// RemoveRequest is the body of POST /session/pending/remove.
type RemoveRequest struct {
	ExerciseID string `json:"exercise_id"`
	Confirm    bool   `json:"confirm"`
}

// ReorderRequest is the body of POST /session/pending/reorder.
type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ApplyRequest is the body of POST /session/pending/apply.
type ApplyRequest struct {
	Scope string `json:"scope"`
}
