package engine

import (
	"strings"
	"time"

	"github.com/hyperengineering/lifter/internal/workout"
)

// NewRepetition starts a cycle from the plan's current template weeks.
func NewRepetition(plan workout.WorkoutPlan, now time.Time, newID func() string) workout.TrackerRepetition {
	weeks := workout.CloneWeeks(plan.Weeks)
	if weeks == nil {
		weeks = []workout.WorkoutWeek{}
	}
	return workout.TrackerRepetition{
		ID:        newID(),
		StartedAt: workout.NowMillis(now),
		Weeks:     weeks,
		Logs:      workout.Logs{},
	}
}

// AppendRepetition returns tracker with rep appended and made current.
func AppendRepetition(tracker workout.Tracker, rep workout.TrackerRepetition) workout.Tracker {
	reps := make([]workout.TrackerRepetition, len(tracker.Repetitions), len(tracker.Repetitions)+1)
	copy(reps, tracker.Repetitions)
	tracker.Repetitions = append(reps, rep)
	tracker.CurrentRepetitionIndex = len(tracker.Repetitions) - 1
	return tracker
}

// RenameRepetition sets the display name of the repetition at idx. A blank
// name or an out of range index leaves the tracker unchanged and reports false.
func RenameRepetition(tracker workout.Tracker, idx int, name string) (workout.Tracker, bool) {
	name = strings.TrimSpace(name)
	if name == "" || idx < 0 || idx >= len(tracker.Repetitions) {
		return tracker, false
	}
	reps := make([]workout.TrackerRepetition, len(tracker.Repetitions))
	copy(reps, tracker.Repetitions)
	reps[idx].Name = name
	tracker.Repetitions = reps
	return tracker, true
}

// ReplaceRepetition returns tracker with the repetition at idx swapped for rep.
func ReplaceRepetition(tracker workout.Tracker, idx int, rep workout.TrackerRepetition) workout.Tracker {
	if idx < 0 || idx >= len(tracker.Repetitions) {
		return tracker
	}
	reps := make([]workout.TrackerRepetition, len(tracker.Repetitions))
	copy(reps, tracker.Repetitions)
	reps[idx] = rep
	tracker.Repetitions = reps
	return tracker
}
