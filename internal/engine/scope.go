package engine

import (
	"github.com/hyperengineering/lifter/internal/workout"
)

// Cursor addresses the day-instance being viewed.
type Cursor struct {
	Repetition int // index into Tracker.Repetitions
	Week       int
	Day        int // day position within the week
}

// Outcome is the result of ApplyScope. When Applied is false Plan and Tracker
// are zero values and nothing should be persisted.
type Outcome struct {
	Plan    workout.WorkoutPlan
	Tracker workout.Tracker
	Applied bool
}

// ApplyScope propagates update from the cell at cur according to scope.
//
// The originating cell (cur.Repetition, cur.Week, cur.Day) always receives an
// exact clone of update.NewExercises(). Every other cell the scope reaches is
// surgically merged:
//
//	one-day        nothing else
//	this-day-plan  template day at cur.Week
//	all-weeks      template day in every week, and the day in every week of
//	               every repetition
//
// A nil plan, tracker or update is a silent no-op.
func ApplyScope(plan *workout.WorkoutPlan, tracker *workout.Tracker, cur Cursor, update PendingUpdate, scope workout.Scope, newID func() string) (Outcome, error) {
	if plan == nil || tracker == nil || update == nil {
		return Outcome{}, nil
	}
	if _, err := workout.ParseScope(string(scope)); err != nil {
		return Outcome{}, err
	}

	merge := func(_ int, day workout.WorkoutDay) []workout.Exercise {
		return SurgicalMerge(update, day.Exercises, newID)
	}

	newPlan := *plan
	switch scope {
	case workout.ScopeThisDayPlan:
		newPlan.Weeks = rewriteDay(plan.Weeks, cur.Day, onlyWeek(cur.Week), merge)
	case workout.ScopeAllWeeks:
		newPlan.Weeks = rewriteDay(plan.Weeks, cur.Day, everyWeek, merge)
	}

	newTracker := *tracker
	newTracker.Repetitions = make([]workout.TrackerRepetition, len(tracker.Repetitions))
	for r, rep := range tracker.Repetitions {
		weeks := everyWeek
		if scope != workout.ScopeAllWeeks {
			if r != cur.Repetition {
				newTracker.Repetitions[r] = rep
				continue
			}
			weeks = onlyWeek(cur.Week)
		}

		isOrigin := r == cur.Repetition
		rep.Weeks = rewriteDay(rep.Weeks, cur.Day, weeks, func(w int, day workout.WorkoutDay) []workout.Exercise {
			if isOrigin && w == cur.Week {
				return workout.CloneExercises(update.NewExercises())
			}
			return merge(w, day)
		})
		newTracker.Repetitions[r] = rep
	}

	return Outcome{Plan: newPlan, Tracker: newTracker, Applied: true}, nil
}

func everyWeek(int) bool { return true }

func onlyWeek(week int) func(int) bool {
	return func(w int) bool { return w == week }
}

// rewriteDay returns weeks with the day at dayIdx replaced in every week
// selected by include. Unselected weeks, and weeks too short to have that day,
// are shared with the input.
func rewriteDay(weeks []workout.WorkoutWeek, dayIdx int, include func(int) bool, exercisesFor func(week int, day workout.WorkoutDay) []workout.Exercise) []workout.WorkoutWeek {
	if weeks == nil {
		return nil
	}
	out := make([]workout.WorkoutWeek, len(weeks))
	for w, week := range weeks {
		if !include(w) || dayIdx < 0 || dayIdx >= len(week.Days) {
			out[w] = week
			continue
		}
		days := make([]workout.WorkoutDay, len(week.Days))
		copy(days, week.Days)
		day := days[dayIdx]
		day.Exercises = exercisesFor(w, day)
		days[dayIdx] = day
		out[w] = workout.WorkoutWeek{Days: days}
	}
	return out
}
