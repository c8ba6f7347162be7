// Package engine implements scoped exercise mutations over plan templates and
// tracker repetitions, plus copy-on-write log addressing.
//
// Every function in this package is pure: inputs are never mutated and results
// share untouched subtrees with their inputs.
package engine

import "github.com/hyperengineering/lifter/internal/workout"

// UpdateKind names the variant of a PendingUpdate.
type UpdateKind string

const (
	KindEdit    UpdateKind = "edit"
	KindAdd     UpdateKind = "add"
	KindRemove  UpdateKind = "remove"
	KindReorder UpdateKind = "reorder"
)

// PendingUpdate is a proposed change to the exercises of the day-instance
// being viewed. NewExercises is always the post-change state of that
// originating day-instance. The set of variants is closed.
type PendingUpdate interface {
	Kind() UpdateKind
	NewExercises() []workout.Exercise
	pendingUpdate()
}

// EditUpdate changes name, sets or reps of the exercise at Index.
type EditUpdate struct {
	Exercises []workout.Exercise
	Index     int
}

// AddUpdate appends the last element of Exercises.
type AddUpdate struct {
	Exercises []workout.Exercise
}

// RemoveUpdate deletes the exercise at Index.
type RemoveUpdate struct {
	Exercises []workout.Exercise
	Index     int
}

// ReorderUpdate force-applies the order in Exercises.
type ReorderUpdate struct {
	Exercises []workout.Exercise
}

func (u EditUpdate) Kind() UpdateKind    { return KindEdit }
func (u AddUpdate) Kind() UpdateKind     { return KindAdd }
func (u RemoveUpdate) Kind() UpdateKind  { return KindRemove }
func (u ReorderUpdate) Kind() UpdateKind { return KindReorder }

func (u EditUpdate) NewExercises() []workout.Exercise    { return u.Exercises }
func (u AddUpdate) NewExercises() []workout.Exercise     { return u.Exercises }
func (u RemoveUpdate) NewExercises() []workout.Exercise  { return u.Exercises }
func (u ReorderUpdate) NewExercises() []workout.Exercise { return u.Exercises }

func (EditUpdate) pendingUpdate()    {}
func (AddUpdate) pendingUpdate()     {}
func (RemoveUpdate) pendingUpdate()  {}
func (ReorderUpdate) pendingUpdate() {}

// AffectedIndex returns the position an update targets, if it has one.
func AffectedIndex(u PendingUpdate) (int, bool) {
	switch v := u.(type) {
	case EditUpdate:
		return v.Index, true
	case RemoveUpdate:
		return v.Index, true
	default:
		return 0, false
	}
}
