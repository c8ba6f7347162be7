// Package workout holds the plan and tracker data model shared by the
// mutation engine, the stores and the outer surfaces.
package workout

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownScope is returned when a scope string does not name a known scope.
var ErrUnknownScope = errors.New("unknown scope")

// Exercise is one movement inside a day-instance.
// ID identifies the exercise within its day-instance only; every structural
// copy mints its own IDs.
type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Sets     int    `json:"sets"`
	Reps     string `json:"reps"`
}

// WorkoutDay is one training day. ID survives structure-preserving clones and
// is the key used for log lookups across weeks and repetitions.
type WorkoutDay struct {
	ID        string     `json:"id"`
	DayName   string     `json:"dayName"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutWeek is an ordered list of days.
type WorkoutWeek struct {
	Days []WorkoutDay `json:"days"`
}

// WorkoutPlan is the template program. Edits only reach it through the
// this-day-plan and all-weeks scopes.
type WorkoutPlan struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	DurationWeeks int           `json:"durationWeeks"`
	Weeks         []WorkoutWeek `json:"weeks"`
	CreatedAt     int64         `json:"createdAt"` // unix millis
}

// SetLog is the recorded result of one set.
type SetLog struct {
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
}

// ExerciseLog holds set results indexed by set number.
type ExerciseLog struct {
	Sets []SetLog `json:"sets"`
}

// Logs maps weekKey -> dayID -> exerciseID -> ExerciseLog.
type Logs map[string]map[string]map[string]ExerciseLog

// TrackerRepetition is one cycle through a plan with its own structural copy.
// Weeks is nil only for repetitions stored before per-repetition copies
// existed; MigrateTracker back-fills it.
type TrackerRepetition struct {
	ID        string        `json:"id"`
	StartedAt int64         `json:"startedAt"` // unix millis
	Name      string        `json:"name,omitempty"`
	Weeks     []WorkoutWeek `json:"weeks"`
	Logs      Logs          `json:"logs"`
}

// Tracker binds a plan to its repetitions.
type Tracker struct {
	ID                     string              `json:"id"`
	PlanID                 string              `json:"planId"`
	Repetitions            []TrackerRepetition `json:"repetitions"`
	CurrentRepetitionIndex int                 `json:"currentRepetitionIndex"`
}

// Field names a writable SetLog field.
type Field string

const (
	FieldWeight Field = "weight"
	FieldReps   Field = "reps"
)

// ParseField validates a log field name.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldWeight, FieldReps:
		return Field(s), nil
	default:
		return "", fmt.Errorf("unknown log field %q", s)
	}
}

// Scope controls how far a confirmed exercise change propagates.
type Scope string

const (
	// ScopeOneDay touches only the day-instance being viewed.
	ScopeOneDay Scope = "one-day"
	// ScopeThisDayPlan also merges into the template's day for the current week.
	ScopeThisDayPlan Scope = "this-day-plan"
	// ScopeAllWeeks merges into every week of the template and of every repetition.
	ScopeAllWeeks Scope = "all-weeks"
)

// Scopes lists the valid scopes in display order.
var Scopes = []Scope{ScopeOneDay, ScopeThisDayPlan, ScopeAllWeeks}

// ParseScope converts a string into a Scope.
func ParseScope(s string) (Scope, error) {
	for _, sc := range Scopes {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// WeekKey returns the log bucket key for a zero-based week index.
func WeekKey(week int) string {
	return fmt.Sprintf("week_%d", week)
}

// NowMillis returns t as unix milliseconds.
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FindPlan returns the index of the plan with the given ID, or -1.
func FindPlan(plans []WorkoutPlan, id string) int {
	for i := range plans {
		if plans[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTrackerForPlan returns the index of the first tracker bound to planID, or -1.
func FindTrackerForPlan(trackers []Tracker, planID string) int {
	for i := range trackers {
		if trackers[i].PlanID == planID {
			return i
		}
	}
	return -1
}
