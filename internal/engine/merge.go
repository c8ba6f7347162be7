package engine

import (
	"fmt"

	"github.com/hyperengineering/lifter/internal/workout"
)

// SurgicalMerge applies update to target, the exercises of some day-instance
// other than the one the update originated from. Copies of the same day carry
// different exercise IDs, so correspondence is by position. newID mints the
// identity of an exercise appended by an AddUpdate.
func SurgicalMerge(update PendingUpdate, target []workout.Exercise, newID func() string) []workout.Exercise {
	out := workout.CloneExercises(target)
	if update == nil {
		return out
	}

	switch u := update.(type) {
	case EditUpdate:
		if u.Index < 0 || u.Index >= len(out) || u.Index >= len(u.Exercises) {
			return out
		}
		src := u.Exercises[u.Index]
		out[u.Index].Name = src.Name
		out[u.Index].Sets = src.Sets
		out[u.Index].Reps = src.Reps
		return out

	case AddUpdate:
		if len(u.Exercises) == 0 {
			return out
		}
		added := u.Exercises[len(u.Exercises)-1]
		added.ID = newID()
		return append(out, added)

	case RemoveUpdate:
		if u.Index < 0 || u.Index >= len(out) {
			return out
		}
		return append(out[:u.Index], out[u.Index+1:]...)

	case ReorderUpdate:
		return workout.CloneExercises(u.Exercises)

	default:
		panic(fmt.Sprintf("engine: unhandled pending update %T", update))
	}
}
