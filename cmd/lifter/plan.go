package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/types"
	"github.com/hyperengineering/lifter/internal/workout"
)

var (
	importText  string
	showWeek    int
	deleteForce bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage workout plans",
}

var planImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a plan from text or a document",
	Long:  "Send free text (--text) and/or a document (PDF, text or JSON) to the plan parser and store the result as a new plan with its first repetition.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlanImport,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all plans",
	Args:  cobra.NoArgs,
	RunE:  runPlanList,
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show the template of a plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanShow,
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete a plan",
	Long:  "Delete a plan template. Its tracker and logs are kept. Requires --force or interactive confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanDelete,
}

func init() {
	planImportCmd.Flags().StringVar(&importText, "text", "", "Plan text")
	planShowCmd.Flags().IntVar(&showWeek, "week", 0, "Only show this week")
	planDeleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")

	planCmd.AddCommand(planImportCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planDeleteCmd)
}

// mimeTypes maps file extensions to the types the parser accepts.
var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".json": "application/json",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
}

func readImportFile(path string) (*parser.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mimeType = "text/plain"
	}
	return &parser.File{Data: base64.StdEncoding.EncodeToString(data), MimeType: mimeType}, nil
}

func runPlanImport(cmd *cobra.Command, args []string) error {
	in := parser.Input{Text: importText}
	if len(args) == 1 {
		f, err := readImportFile(args[0])
		if err != nil {
			return err
		}
		in.File = f
	}
	if in.Empty() {
		return fmt.Errorf("%w: pass --text or a file", app.ErrEmptyImport)
	}

	ctx := cmd.Context()
	svc, cfg, err := openService(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	if timeout := time.Duration(cfg.Parser.Timeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	plan, err := svc.Import(ctx, in)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), plan)
	}
	days := 0
	if len(plan.Weeks) > 0 {
		days = len(plan.Weeks[0].Days)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported plan %q (%s): %d weeks, %d days per week\n",
		plan.Name, plan.ID, plan.DurationWeeks, days)
	return nil
}

func runPlanList(cmd *cobra.Command, args []string) error {
	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	selected := svc.Selected()
	plans := svc.Plans()
	summaries := make([]types.PlanSummary, 0, len(plans))
	for _, p := range plans {
		var tp *workout.Tracker
		if t, ok := svc.Tracker(p.ID); ok {
			tp = &t
		}
		summaries = append(summaries, types.NewPlanSummary(p, tp, p.ID == selected))
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"plans": summaries,
			"total": len(summaries),
		})
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plans found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "\tID\tNAME\tWEEKS\tREPETITIONS\tCREATED")
	for _, s := range summaries {
		mark := ""
		if s.Selected {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			mark,
			s.ID,
			s.Name,
			s.DurationWeeks,
			s.Repetitions,
			time.UnixMilli(s.CreatedAt).Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	return nil
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	plan, err := svc.Plan(args[0])
	if err != nil {
		return err
	}

	weeks := plan.Weeks
	first := 1
	if showWeek > 0 {
		if showWeek > len(plan.Weeks) {
			return fmt.Errorf("week %d does not exist", showWeek)
		}
		weeks = plan.Weeks[showWeek-1 : showWeek]
		first = showWeek
	}

	if jsonOutput {
		if showWeek > 0 {
			return printJSON(cmd.OutOrStdout(), weeks[0])
		}
		return printJSON(cmd.OutOrStdout(), plan)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d weeks)\n", plan.Name, plan.DurationWeeks)
	for wi, week := range weeks {
		fmt.Fprintf(out, "\nWeek %d\n", first+wi)
		for di, day := range week.Days {
			fmt.Fprintf(out, "  Day %d: %s - %s\n", di+1, day.DayName, day.Focus)
			for ei, ex := range day.Exercises {
				fmt.Fprintf(out, "    %d. %s  %dx%s\n", ei+1, ex.Name, ex.Sets, ex.Reps)
			}
		}
	}
	return nil
}

func runPlanDelete(cmd *cobra.Command, args []string) error {
	planID := args[0]

	svc, _, err := openService(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	plan, err := svc.Plan(planID)
	if err != nil {
		return err
	}

	// Interactive confirmation unless --force
	if !deleteForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This will delete plan %q. Its logs are kept.\n", plan.Name)
		fmt.Fprint(errOut, "Type the plan ID to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}

		if strings.TrimSpace(input) != planID {
			fmt.Fprintln(errOut, "Aborted. Plan ID did not match.")
			return nil
		}
	}

	if err := svc.DeletePlan(cmd.Context(), planID, true); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      planID,
			"deleted": true,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %q\n", plan.Name)
	return nil
}
