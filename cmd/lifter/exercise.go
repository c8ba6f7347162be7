package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/workout"
)

var (
	exName  string
	exSets  int
	exReps  string
	exScope string
	exForce bool
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Change the exercises of a day",
	Long: `Change the exercises of the day selected with --week and --day.

--scope controls how far the change reaches:
  one-day        only this day of this repetition
  this-day-plan  also the plan template for this week
  all-weeks      the template and every repetition, in every week`,
}

var exerciseEditCmd = &cobra.Command{
	Use:   "edit <exercise>",
	Short: "Change name, sets or reps of an exercise",
	Args:  cobra.ExactArgs(1),
	RunE:  runExerciseEdit,
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append an exercise to the day",
	Args:  cobra.NoArgs,
	RunE:  runExerciseAdd,
}

var exerciseRemoveCmd = &cobra.Command{
	Use:   "remove <exercise>",
	Short: "Remove an exercise from the day",
	Long:  "Remove an exercise. Requires --force or interactive confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExerciseRemove,
}

var exerciseMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move an exercise to another position",
	Args:  cobra.ExactArgs(2),
	RunE:  runExerciseMove,
}

func init() {
	for _, c := range []*cobra.Command{exerciseEditCmd, exerciseAddCmd, exerciseRemoveCmd, exerciseMoveCmd} {
		cursor.register(c)
		c.Flags().StringVar(&exScope, "scope", string(workout.ScopeOneDay),
			"Propagation scope: one-day, this-day-plan or all-weeks")
		exerciseCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{exerciseEditCmd, exerciseAddCmd} {
		c.Flags().StringVar(&exName, "name", "", "Exercise name")
		c.Flags().IntVar(&exSets, "sets", 0, "Number of sets")
		c.Flags().StringVar(&exReps, "reps", "", `Target reps, e.g. "10" or "12/10/8"`)
	}
	exerciseRemoveCmd.Flags().BoolVar(&exForce, "force", false, "Skip confirmation prompt")
}

// parseScopeFlag validates --scope before anything is staged.
func parseScopeFlag() (workout.Scope, error) {
	return workout.ParseScope(exScope)
}

func runExerciseEdit(cmd *cobra.Command, args []string) error {
	scope, err := parseScopeFlag()
	if err != nil {
		return err
	}
	if exName == "" && exSets == 0 && exReps == "" {
		return fmt.Errorf("nothing to change: pass --name, --sets or --reps")
	}

	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	day, err := svc.CurrentDay()
	if err != nil {
		return err
	}
	idx, err := resolveExercise(day, args[0])
	if err != nil {
		return err
	}

	ex := day.Exercises[idx]
	in := app.EditInput{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps}
	if exName != "" {
		in.Name = exName
	}
	if exSets != 0 {
		in.Sets = exSets
	}
	if exReps != "" {
		in.Reps = exReps
	}

	if err := svc.BeginEdit(ex.ID); err != nil {
		return err
	}
	if _, err := svc.ProposeEdit(in); err != nil {
		return err
	}
	return applyAndPrint(cmd, svc, scope)
}

func runExerciseAdd(cmd *cobra.Command, args []string) error {
	scope, err := parseScopeFlag()
	if err != nil {
		return err
	}

	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	if _, err := svc.ProposeAdd(app.EditInput{Name: exName, Sets: exSets, Reps: exReps}); err != nil {
		return err
	}
	return applyAndPrint(cmd, svc, scope)
}

func runExerciseRemove(cmd *cobra.Command, args []string) error {
	scope, err := parseScopeFlag()
	if err != nil {
		return err
	}

	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	day, err := svc.CurrentDay()
	if err != nil {
		return err
	}
	idx, err := resolveExercise(day, args[0])
	if err != nil {
		return err
	}
	ex := day.Exercises[idx]

	// Interactive confirmation unless --force
	if !exForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "Remove %q (scope %s)? [y/N]: ", ex.Name, scope)

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if answer := strings.ToLower(strings.TrimSpace(input)); answer != "y" && answer != "yes" {
			fmt.Fprintln(errOut, "Aborted.")
			return nil
		}
	}

	if _, err := svc.ProposeRemove(ex.ID, true); err != nil {
		return err
	}
	return applyAndPrint(cmd, svc, scope)
}

func runExerciseMove(cmd *cobra.Command, args []string) error {
	scope, err := parseScopeFlag()
	if err != nil {
		return err
	}
	from, errFrom := strconv.Atoi(args[0])
	to, errTo := strconv.Atoi(args[1])
	if errFrom != nil || errTo != nil {
		return fmt.Errorf("positions must be numbers, got %q and %q", args[0], args[1])
	}

	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	u, err := svc.ProposeReorder(from-1, to-1)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to move.")
		return printView(cmd.OutOrStdout(), svc.View())
	}
	return applyAndPrint(cmd, svc, scope)
}

// applyAndPrint propagates the staged update with scope and prints the day.
func applyAndPrint(cmd *cobra.Command, svc *app.Service, scope workout.Scope) error {
	if err := svc.ApplyPending(cmd.Context(), scope); err != nil {
		return err
	}
	return printView(cmd.OutOrStdout(), svc.View())
}
