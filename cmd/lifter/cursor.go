package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/workout"
)

// cursorFlags selects the plan, repetition, week and day a command works on.
// Numbers on the command line are 1-based.
type cursorFlags struct {
	plan string
	rep  int
	week int
	day  int
}

var cursor = cursorFlags{week: 1, day: 1}

func (f *cursorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.plan, "plan", "",
		"Plan ID (default: plan of the most recently created tracker)")
	cmd.Flags().IntVar(&f.rep, "rep", 0,
		"Repetition number (default: the current repetition)")
	cmd.Flags().IntVar(&f.week, "week", 1, "Week number")
	cmd.Flags().IntVar(&f.day, "day", 1, "Day number within the week")
}

// apply moves the service cursor to the flags. Positions outside the plan are
// errors rather than being clamped.
func (f *cursorFlags) apply(svc *app.Service) error {
	if f.plan != "" {
		if err := svc.SelectPlan(f.plan); err != nil {
			return err
		}
	}
	if svc.Selected() == "" {
		return fmt.Errorf("%w: import a plan or pass --plan", app.ErrNoPlanSelected)
	}

	if f.rep > 0 {
		got, err := svc.SetRepetition(f.rep - 1)
		if err != nil {
			return err
		}
		if got != f.rep-1 {
			return fmt.Errorf("repetition %d does not exist", f.rep)
		}
	}
	got, err := svc.SetWeek(f.week - 1)
	if err != nil {
		return err
	}
	if got != f.week-1 {
		return fmt.Errorf("week %d does not exist", f.week)
	}
	got, err = svc.SetDay(f.day - 1)
	if err != nil {
		return err
	}
	if got != f.day-1 {
		return fmt.Errorf("day %d does not exist in week %d", f.day, f.week)
	}
	return nil
}

// resolveExercise finds an exercise of day by 1-based position or by ID.
func resolveExercise(day workout.WorkoutDay, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(day.Exercises) {
			return -1, fmt.Errorf("exercise %d does not exist (day has %d)", n, len(day.Exercises))
		}
		return n - 1, nil
	}
	for i, ex := range day.Exercises {
		if ex.ID == ref || strings.EqualFold(ex.Name, ref) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", app.ErrExerciseNotFound, ref)
}
