package engine

import (
	"github.com/hyperengineering/lifter/internal/workout"
)

// LogAddress locates one set inside a repetition's logs.
type LogAddress struct {
	Week       int
	DayID      string
	ExerciseID string
	Set        int
}

// ReadLog returns the logged set at addr. Any missing level yields an empty
// SetLog.
func ReadLog(rep workout.TrackerRepetition, addr LogAddress) workout.SetLog {
	ex, ok := rep.Logs[workout.WeekKey(addr.Week)][addr.DayID][addr.ExerciseID]
	if !ok || addr.Set < 0 || addr.Set >= len(ex.Sets) {
		return workout.SetLog{}
	}
	return ex.Sets[addr.Set]
}

// WriteLog returns a copy of rep with field at addr set to value. Only the
// maps on the path from the root to the written set are rebuilt; sibling
// weeks, days and exercises are shared with rep. Missing levels are created
// and a gap in the sets slice is filled with empty entries. Entries past the
// exercise's current set count are kept as they are.
func WriteLog(rep workout.TrackerRepetition, addr LogAddress, field workout.Field, value string) workout.TrackerRepetition {
	if addr.Set < 0 {
		return rep
	}
	weekKey := workout.WeekKey(addr.Week)

	oldDays := rep.Logs[weekKey]
	oldExercises := oldDays[addr.DayID]
	oldSets := oldExercises[addr.ExerciseID].Sets

	size := len(oldSets)
	if addr.Set >= size {
		size = addr.Set + 1
	}
	sets := make([]workout.SetLog, size)
	copy(sets, oldSets)

	set := sets[addr.Set]
	switch field {
	case workout.FieldWeight:
		set.Weight = value
	case workout.FieldReps:
		set.Reps = value
	default:
		return rep
	}
	sets[addr.Set] = set

	exercises := copyMap(oldExercises)
	exercises[addr.ExerciseID] = workout.ExerciseLog{Sets: sets}

	days := copyMap(oldDays)
	days[addr.DayID] = exercises

	logs := copyMap(rep.Logs)
	logs[weekKey] = days

	rep.Logs = logs
	return rep
}

// copyMap returns a shallow copy with room for one more key.
func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
