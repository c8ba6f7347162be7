package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/engine"
	"github.com/hyperengineering/lifter/internal/workout"
)

var (
	logWeight string
	logReps   string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the logging grid for one day",
	Args:  cobra.NoArgs,
	RunE:  runSession,
}

var repCmd = &cobra.Command{
	Use:   "rep",
	Short: "Manage repetitions of a plan",
}

var repStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new repetition from the current template",
	Args:  cobra.NoArgs,
	RunE:  runRepStart,
}

var repRenameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename a repetition",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepRename,
}

var repListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the repetitions of a plan",
	Args:  cobra.NoArgs,
	RunE:  runRepList,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record set results",
}

var logSetCmd = &cobra.Command{
	Use:   "set <exercise> <set>",
	Short: "Record weight and/or reps for one set",
	Long:  "Record a set result. <exercise> is a position in the day, an exercise ID or a name; <set> starts at 1.",
	Args:  cobra.ExactArgs(2),
	RunE:  runLogSet,
}

func init() {
	cursor.register(sessionCmd)
	cursor.register(repStartCmd)
	cursor.register(repRenameCmd)
	cursor.register(repListCmd)
	cursor.register(logSetCmd)

	logSetCmd.Flags().StringVar(&logWeight, "weight", "", "Weight lifted")
	logSetCmd.Flags().StringVar(&logReps, "reps", "", "Reps performed")

	repCmd.AddCommand(repStartCmd)
	repCmd.AddCommand(repRenameCmd)
	repCmd.AddCommand(repListCmd)
	logCmd.AddCommand(logSetCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	return printView(cmd.OutOrStdout(), svc.View())
}

// printView renders the day under the cursor with its logging grid.
func printView(out io.Writer, v app.View) error {
	if jsonOutput {
		return printJSON(out, v)
	}
	if v.Plan == nil {
		fmt.Fprintln(out, "No plan selected.")
		return nil
	}

	fmt.Fprintf(out, "%s - %s - Week %d\n", v.Plan.Name, v.RepetitionLabel, v.Week+1)
	if v.Day == nil {
		fmt.Fprintln(out, "No days in this week.")
		return nil
	}
	fmt.Fprintf(out, "Day %d: %s - %s\n\n", v.DayIndex+1, v.Day.DayName, v.Day.Focus)

	w := newTabWriter(out)
	fmt.Fprintln(w, "#\tEXERCISE\tSET\tTARGET\tWEIGHT\tREPS")
	for i, ex := range v.Day.Exercises {
		for s, row := range v.Sets[i].Sets {
			num, name := "", ""
			if s == 0 {
				num, name = fmt.Sprint(i+1), ex.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				num, name, s+1, row.TargetReps, dash(row.Weight), dash(row.Reps))
		}
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runRepStart(cmd *cobra.Command, args []string) error {
	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	rep, err := svc.StartNewRepetition(cmd.Context())
	if err != nil {
		return err
	}

	v := svc.View()
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":         rep.ID,
			"repetition": v.Repetition + 1,
			"label":      v.RepetitionLabel,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", v.RepetitionLabel)
	return nil
}

func runRepRename(cmd *cobra.Command, args []string) error {
	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	renamed, err := svc.RenameRepetition(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	label := svc.View().RepetitionLabel
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"renamed": renamed,
			"label":   label,
		})
	}
	if !renamed {
		fmt.Fprintf(cmd.OutOrStdout(), "Name unchanged: %s\n", label)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", label)
	return nil
}

func runRepList(cmd *cobra.Command, args []string) error {
	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := cursor.apply(svc); err != nil {
		return err
	}
	tracker, ok := svc.Tracker(svc.Selected())
	if !ok {
		return app.ErrNoTracker
	}

	type repRow struct {
		Number    int    `json:"number"`
		ID        string `json:"id"`
		Label     string `json:"label"`
		StartedAt int64  `json:"started_at"`
		Current   bool   `json:"current"`
	}
	rows := make([]repRow, len(tracker.Repetitions))
	for i, rep := range tracker.Repetitions {
		rows[i] = repRow{
			Number:    i + 1,
			ID:        rep.ID,
			Label:     app.RepetitionLabel(rep, i),
			StartedAt: rep.StartedAt,
			Current:   i == tracker.CurrentRepetitionIndex,
		}
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"repetitions": rows})
	}
	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "\t#\tNAME\tSTARTED")
	for _, r := range rows {
		mark := ""
		if r.Current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", mark, r.Number, r.Label,
			time.UnixMilli(r.StartedAt).Format("2006-01-02"))
	}
	return w.Flush()
}

func runLogSet(cmd *cobra.Command, args []string) error {
	if logWeight == "" && logReps == "" {
		return fmt.Errorf("pass --weight and/or --reps")
	}
	var setNum int
	if _, err := fmt.Sscanf(args[1], "%d", &setNum); err != nil || setNum < 1 {
		return fmt.Errorf("invalid set number %q", args[1])
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
	if setNum > ex.Sets {
		return fmt.Errorf("%s has %d sets", ex.Name, ex.Sets)
	}

	addr := engine.LogAddress{Week: cursor.week - 1, DayID: day.ID, ExerciseID: ex.ID, Set: setNum - 1}
	if logWeight != "" {
		if err := svc.UpdateLog(cmd.Context(), addr, workout.FieldWeight, logWeight); err != nil {
			return err
		}
	}
	if logReps != "" {
		if err := svc.UpdateLog(cmd.Context(), addr, workout.FieldReps, logReps); err != nil {
			return err
		}
	}

	logged, err := svc.ReadLog(addr)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), logged)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set %d: %s x %s (target %s)\n",
		ex.Name, setNum, dash(logged.Weight), dash(logged.Reps), workout.TargetReps(ex.Reps, setNum-1))
	return nil
}
