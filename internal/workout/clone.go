package workout

import (
	"github.com/oklog/ulid/v2"
)

// NewID mints a new identifier. Tests may swap it for a deterministic source.
var NewID = func() string {
	return ulid.Make().String()
}

// CloneExercises returns a deep copy of exercises, IDs preserved.
// A nil input stays nil.
func CloneExercises(exercises []Exercise) []Exercise {
	if exercises == nil {
		return nil
	}
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	return out
}

// CloneDay returns a deep copy of day with every ID preserved.
func CloneDay(day WorkoutDay) WorkoutDay {
	day.Exercises = CloneExercises(day.Exercises)
	return day
}

// CloneWeeks returns a deep copy of weeks with every ID preserved. This is the
// copy used when a repetition takes its structure from the template.
func CloneWeeks(weeks []WorkoutWeek) []WorkoutWeek {
	if weeks == nil {
		return nil
	}
	out := make([]WorkoutWeek, len(weeks))
	for i, w := range weeks {
		days := make([]WorkoutDay, len(w.Days))
		for j, d := range w.Days {
			days[j] = CloneDay(d)
		}
		out[i] = WorkoutWeek{Days: days}
	}
	return out
}

// CloneDayFresh copies day minting new IDs for the day and each exercise.
func CloneDayFresh(day WorkoutDay) WorkoutDay {
	out := WorkoutDay{
		ID:        NewID(),
		DayName:   day.DayName,
		Focus:     day.Focus,
		Exercises: make([]Exercise, len(day.Exercises)),
	}
	for i, ex := range day.Exercises {
		ex.ID = NewID()
		out.Exercises[i] = ex
	}
	return out
}

// MigrateTracker back-fills Weeks on repetitions stored before each repetition
// carried its own structure. Repetitions that already have weeks are shared
// as-is. It reports whether anything changed.
func MigrateTracker(t Tracker, plan *WorkoutPlan) (Tracker, bool) {
	if plan == nil {
		return t, false
	}
	changed := false
	reps := make([]TrackerRepetition, len(t.Repetitions))
	for i, rep := range t.Repetitions {
		if rep.Weeks == nil {
			rep.Weeks = CloneWeeks(plan.Weeks)
			if rep.Weeks == nil {
				rep.Weeks = []WorkoutWeek{}
			}
			changed = true
		}
		if rep.Logs == nil {
			rep.Logs = Logs{}
		}
		reps[i] = rep
	}
	t.Repetitions = reps
	return t, changed
}
