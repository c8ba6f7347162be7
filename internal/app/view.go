package app

import (
	"strconv"

	"github.com/hyperengineering/lifter/internal/engine"
	"github.com/hyperengineering/lifter/internal/workout"
)

// View is a snapshot of the session for rendering. Its slices are shared with
// the service and must not be modified.
type View struct {
	Plan              *workout.WorkoutPlan `json:"plan,omitempty"`
	Tracker           *workout.Tracker     `json:"tracker,omitempty"`
	Week              int                  `json:"week"`
	DayIndex          int                  `json:"dayIndex"`
	Repetition        int                  `json:"repetition"`
	RepetitionLabel   string               `json:"repetitionLabel,omitempty"`
	Day               *workout.WorkoutDay  `json:"day,omitempty"`
	Sets              []ExerciseSets       `json:"sets,omitempty"`
	EditingExerciseID string               `json:"editingExerciseId,omitempty"`
	Pending           *PendingView         `json:"pending,omitempty"`
}

// ExerciseSets pairs each set of an exercise with its target and logged values.
type ExerciseSets struct {
	ExerciseID string    `json:"exerciseId"`
	Sets       []SetView `json:"sets"`
}

// SetView is one row of the logging grid.
type SetView struct {
	TargetReps string `json:"targetReps"`
	Weight     string `json:"weight"`
	Reps       string `json:"reps"`
}

// PendingView describes the update awaiting a scope choice.
type PendingView struct {
	Kind      engine.UpdateKind  `json:"kind"`
	Exercises []workout.Exercise `json:"exercises"`
	Index     *int               `json:"index,omitempty"`
}

// RepetitionLabel is the display name of the repetition at idx.
func RepetitionLabel(rep workout.TrackerRepetition, idx int) string {
	if rep.Name != "" {
		return rep.Name
	}
	return "Repetition " + strconv.Itoa(idx+1)
}

func pendingView(u engine.PendingUpdate) *PendingView {
	if u == nil {
		return nil
	}
	pv := &PendingView{Kind: u.Kind(), Exercises: u.NewExercises()}
	if idx, ok := engine.AffectedIndex(u); ok {
		pv.Index = &idx
	}
	return pv
}

// setsFor builds the logging grid for day. Rows follow each exercise's
// current set count; logged entries beyond it stay stored but are not shown.
func setsFor(rep workout.TrackerRepetition, week int, day workout.WorkoutDay) []ExerciseSets {
	out := make([]ExerciseSets, len(day.Exercises))
	for i, ex := range day.Exercises {
		rows := make([]SetView, ex.Sets)
		for s := range rows {
			logged := engine.ReadLog(rep, engine.LogAddress{Week: week, DayID: day.ID, ExerciseID: ex.ID, Set: s})
			rows[s] = SetView{
				TargetReps: workout.TargetReps(ex.Reps, s),
				Weight:     logged.Weight,
				Reps:       logged.Reps,
			}
		}
		out[i] = ExerciseSets{ExerciseID: ex.ID, Sets: rows}
	}
	return out
}
