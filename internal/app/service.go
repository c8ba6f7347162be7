// Package app coordinates the plan and tracker collections with the session
// selection (plan, week, day, repetition, pending update). Every operation runs
// to completion under one lock and persists before it returns.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyperengineering/lifter/internal/engine"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/store"
	"github.com/hyperengineering/lifter/internal/validation"
	"github.com/hyperengineering/lifter/internal/workout"
)

// Recorder receives domain events for metrics.
type Recorder interface {
	ImportFinished(ok bool, seconds float64)
	ScopeApplied(scope, kind string)
	Proposed(kind string)
	LogWritten()
	RepetitionStarted()
}

type nopRecorder struct{}

func (nopRecorder) ImportFinished(bool, float64) {}
func (nopRecorder) ScopeApplied(string, string)  {}
func (nopRecorder) Proposed(string)              {}
func (nopRecorder) LogWritten()                  {}
func (nopRecorder) RepetitionStarted()           {}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the ID source.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// selection is the session state that is never persisted except through
// the tracker's current repetition.
type selection struct {
	planID     string
	week       int
	day        int
	repetition int
	editingID  string
	pending    engine.PendingUpdate
}

// Service owns the collections and the session selection.
type Service struct {
	mu        sync.Mutex
	store     *store.Collections
	parser    parser.Parser
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	importing atomic.Bool

	plans    []workout.WorkoutPlan
	trackers []workout.Tracker
	sel      selection
}

// New creates a Service. Call Load before use.
func New(st *store.Collections, p parser.Parser, opts ...Option) *Service {
	s := &Service{
		store:    st,
		parser:   p,
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    workout.NewID,
		plans:    []workout.WorkoutPlan{},
		trackers: []workout.Tracker{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "app")
	return s
}

// Load reads both collections, back-fills repetitions stored without their
// own weeks and restores the selection to the plan of the last tracker.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.store.LoadPlans(ctx)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}
	trackers, err := s.store.LoadTrackers(ctx)
	if err != nil {
		return fmt.Errorf("load trackers: %w", err)
	}

	migrated := 0
	for i, t := range trackers {
		idx := workout.FindPlan(plans, t.PlanID)
		if idx < 0 {
			continue
		}
		var changed bool
		trackers[i], changed = workout.MigrateTracker(t, &plans[idx])
		if changed {
			migrated++
		}
	}
	if migrated > 0 {
		if err := s.store.SaveTrackers(ctx, trackers); err != nil {
			return fmt.Errorf("save migrated trackers: %w", err)
		}
		s.logger.Info("trackers migrated", "action", "load", "count", migrated)
	}

	s.plans = plans
	s.trackers = trackers
	s.sel = selection{}

	if len(trackers) > 0 {
		last := trackers[len(trackers)-1]
		if workout.FindPlan(plans, last.PlanID) >= 0 {
			s.sel = selection{planID: last.PlanID, repetition: last.CurrentRepetitionIndex}
		}
	}

	s.logger.Info("collections loaded", "action", "load", "plans", len(plans), "trackers", len(trackers))
	return nil
}

// Import parses in into a new plan, creates its tracker with a first
// repetition and selects it. The parse call runs without holding the lock;
// a second import submitted meanwhile gets ErrImportInProgress. On failure
// nothing is stored.
func (s *Service) Import(ctx context.Context, in parser.Input) (workout.WorkoutPlan, error) {
	if in.Empty() {
		return workout.WorkoutPlan{}, ErrEmptyImport
	}
	var fileData, mimeType string
	if in.File != nil {
		fileData, mimeType = in.File.Data, in.File.MimeType
	}
	if errs := validation.ValidateImport(in.Text, fileData, mimeType); len(errs) > 0 {
		return workout.WorkoutPlan{}, validation.Errors(errs)
	}

	if s.parser == nil {
		return workout.WorkoutPlan{}, ErrNoParser
	}
	if !s.importing.CompareAndSwap(false, true) {
		return workout.WorkoutPlan{}, ErrImportInProgress
	}
	defer s.importing.Store(false)

	start := s.now()
	parsed, err := s.parser.ParsePlan(ctx, in)
	if err == nil {
		err = parsed.Check()
	}
	s.recorder.ImportFinished(err == nil, s.now().Sub(start).Seconds())
	if err != nil {
		s.logger.Warn("import failed", "action", "import", "error", err)
		return workout.WorkoutPlan{}, fmt.Errorf("import plan: %w", err)
	}

	now := s.now()
	plan := parser.BuildPlan(*parsed, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	tracker := engine.AppendRepetition(
		workout.Tracker{ID: s.newID(), PlanID: plan.ID},
		engine.NewRepetition(plan, now, s.newID),
	)

	plans := append(cloneSlice(s.plans), plan)
	trackers := append(cloneSlice(s.trackers), tracker)
	if err := s.save(ctx, plans, trackers); err != nil {
		return workout.WorkoutPlan{}, err
	}

	s.plans = plans
	s.trackers = trackers
	s.sel = selection{planID: plan.ID}

	s.logger.Info("plan imported", "action", "import", "plan_id", plan.ID,
		"weeks", plan.DurationWeeks, "model", s.parser.ModelName())
	return plan, nil
}

// SelectPlan makes id the active plan and resets the cursor to the first day
// of the tracker's current repetition.
func (s *Service) SelectPlan(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workout.FindPlan(s.plans, id) < 0 {
		return ErrPlanNotFound
	}
	sel := selection{planID: id}
	if ti := workout.FindTrackerForPlan(s.trackers, id); ti >= 0 {
		sel.repetition = s.trackers[ti].CurrentRepetitionIndex
	}
	s.sel = sel
	return nil
}

// SetWeek moves the cursor to week, clamped to the repetition's weeks.
// It returns the week actually selected.
func (s *Service) SetWeek(week int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, _, err := s.activeRepetition()
	if err != nil {
		return 0, err
	}
	if s.sel.pending != nil {
		return s.sel.week, ErrPendingUpdate
	}
	s.sel.week = clamp(week, len(rep.Weeks))
	s.sel.day = clamp(s.sel.day, daysIn(rep, s.sel.week))
	s.sel.editingID = ""
	return s.sel.week, nil
}

// SetDay moves the cursor to the day at position day of the current week,
// clamped to the days available.
func (s *Service) SetDay(day int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, _, err := s.activeRepetition()
	if err != nil {
		return 0, err
	}
	if s.sel.pending != nil {
		return s.sel.day, ErrPendingUpdate
	}
	s.sel.day = clamp(day, daysIn(rep, s.sel.week))
	s.sel.editingID = ""
	return s.sel.day, nil
}

// SetRepetition switches the viewed repetition, clamped to those that exist.
func (s *Service) SetRepetition(idx int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ti, err := s.activeTracker()
	if err != nil {
		return 0, err
	}
	if s.sel.pending != nil {
		return s.sel.repetition, ErrPendingUpdate
	}
	s.sel.repetition = clamp(idx, len(s.trackers[ti].Repetitions))
	s.sel.editingID = ""
	return s.sel.repetition, nil
}

// StartNewRepetition appends a repetition built from the current template,
// makes it current and viewed and returns to week 0. A plan without a tracker
// gets one.
func (s *Service) StartNewRepetition(ctx context.Context) (workout.TrackerRepetition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, _, err := s.activePlan()
	if err != nil {
		return workout.TrackerRepetition{}, err
	}
	if s.sel.pending != nil {
		return workout.TrackerRepetition{}, ErrPendingUpdate
	}

	rep := engine.NewRepetition(*plan, s.now(), s.newID)

	trackers := cloneSlice(s.trackers)
	ti := workout.FindTrackerForPlan(trackers, plan.ID)
	if ti < 0 {
		trackers = append(trackers, workout.Tracker{ID: s.newID(), PlanID: plan.ID})
		ti = len(trackers) - 1
	}
	trackers[ti] = engine.AppendRepetition(trackers[ti], rep)

	if err := s.save(ctx, nil, trackers); err != nil {
		return workout.TrackerRepetition{}, err
	}
	s.trackers = trackers
	s.sel.repetition = trackers[ti].CurrentRepetitionIndex
	s.sel.week = 0
	s.sel.day = clamp(s.sel.day, daysIn(&rep, 0))
	s.sel.editingID = ""
	s.recorder.RepetitionStarted()

	s.logger.Info("repetition started", "action", "start_repetition", "plan_id", plan.ID,
		"repetition", s.sel.repetition)
	return rep, nil
}

// RenameRepetition names the viewed repetition. A blank name leaves it
// unchanged and reports false.
func (s *Service) RenameRepetition(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ti, err := s.activeTracker()
	if err != nil {
		return false, err
	}
	if errs := validation.ValidateRepetitionName(name); len(errs) > 0 {
		return false, validation.Errors(errs)
	}

	tracker, ok := engine.RenameRepetition(s.trackers[ti], s.viewedIndex(ti), name)
	if !ok {
		return false, nil
	}
	trackers := replaceAt(s.trackers, ti, tracker)
	if err := s.save(ctx, nil, trackers); err != nil {
		return false, err
	}
	s.trackers = trackers
	return true, nil
}

// UpdateLog records one field of one set in the viewed repetition and
// persists the tracker collection.
func (s *Service) UpdateLog(ctx context.Context, addr engine.LogAddress, field workout.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ti, err := s.activeTracker()
	if err != nil {
		return err
	}

	c := &validation.Collector{}
	c.Add(validation.ValidateIntRange("set", addr.Set, 0, validation.MaxSets-1))
	if _, ferr := workout.ParseField(string(field)); ferr != nil {
		c.Add(&validation.ValidationError{Field: "field", Message: ferr.Error()})
	}
	c.Add(validation.ValidateRequired("dayId", addr.DayID))
	c.Add(validation.ValidateRequired("exerciseId", addr.ExerciseID))
	for _, e := range validation.ValidateLogValue(value) {
		c.Add(&e)
	}
	if err := c.Err(); err != nil {
		return err
	}

	ri := s.viewedIndex(ti)
	tracker := s.trackers[ti]
	rep := engine.WriteLog(tracker.Repetitions[ri], addr, field, value)
	trackers := replaceAt(s.trackers, ti, engine.ReplaceRepetition(tracker, ri, rep))

	if err := s.save(ctx, nil, trackers); err != nil {
		return err
	}
	s.trackers = trackers
	s.recorder.LogWritten()
	return nil
}

// ReadLog returns the logged set at addr in the viewed repetition.
func (s *Service) ReadLog(addr engine.LogAddress) (workout.SetLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, _, err := s.activeRepetition()
	if err != nil {
		return workout.SetLog{}, err
	}
	return engine.ReadLog(*rep, addr), nil
}

// CurrentDay returns the day-instance under the cursor.
func (s *Service) CurrentDay() (workout.WorkoutDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := s.currentDay()
	if err != nil {
		return workout.WorkoutDay{}, err
	}
	return *day, nil
}

// BeginEdit marks exerciseID in the current day as being edited.
func (s *Service) BeginEdit(exerciseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sel.pending != nil {
		return ErrPendingUpdate
	}
	day, err := s.currentDay()
	if err != nil {
		return err
	}
	if exerciseIndex(day.Exercises, exerciseID) < 0 {
		return ErrExerciseNotFound
	}
	s.sel.editingID = exerciseID
	return nil
}

// CancelEdit leaves edit mode without proposing anything.
func (s *Service) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.editingID = ""
}

// EditInput carries the new values for the exercise being edited.
type EditInput struct {
	Name string
	Sets int
	Reps string
}

// ProposeEdit stages an edit of the exercise selected with BeginEdit. Sets
// below one become one.
func (s *Service) ProposeEdit(in EditInput) (engine.PendingUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sel.editingID == "" {
		return nil, ErrNotEditing
	}
	day, err := s.proposalDay()
	if err != nil {
		return nil, err
	}
	idx := exerciseIndex(day.Exercises, s.sel.editingID)
	if idx < 0 {
		return nil, ErrExerciseNotFound
	}
	if in.Sets < 1 {
		in.Sets = 1
	}
	if errs := validation.ValidateExercise("", in.Name, in.Sets, in.Reps); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}

	exercises := workout.CloneExercises(day.Exercises)
	exercises[idx].Name = in.Name
	exercises[idx].Sets = in.Sets
	exercises[idx].Reps = in.Reps

	return s.stage(engine.EditUpdate{Exercises: exercises, Index: idx}), nil
}

// Defaults for a newly added exercise.
const (
	DefaultExerciseName = "New Move"
	DefaultExerciseSets = 3
	DefaultExerciseReps = "10"
)

// ProposeAdd stages appending an exercise to the current day. Zero fields take
// the defaults.
func (s *Service) ProposeAdd(in EditInput) (engine.PendingUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := s.proposalDay()
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		in.Name = DefaultExerciseName
	}
	if in.Sets < 1 {
		in.Sets = DefaultExerciseSets
	}
	if in.Reps == "" {
		in.Reps = DefaultExerciseReps
	}
	if errs := validation.ValidateExercise("", in.Name, in.Sets, in.Reps); len(errs) > 0 {
		return nil, validation.Errors(errs)
	}

	exercises := append(workout.CloneExercises(day.Exercises), workout.Exercise{
		ID:   s.newID(),
		Name: in.Name,
		Sets: in.Sets,
		Reps: in.Reps,
	})
	return s.stage(engine.AddUpdate{Exercises: exercises}), nil
}

// ProposeRemove stages removing exerciseID from the current day. Without
// confirmation nothing changes.
func (s *Service) ProposeRemove(exerciseID string, confirmed bool) (engine.PendingUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !confirmed {
		return nil, ErrNotConfirmed
	}
	day, err := s.proposalDay()
	if err != nil {
		return nil, err
	}
	idx := exerciseIndex(day.Exercises, exerciseID)
	if idx < 0 {
		return nil, ErrExerciseNotFound
	}

	exercises := make([]workout.Exercise, 0, len(day.Exercises)-1)
	exercises = append(exercises, day.Exercises[:idx]...)
	exercises = append(exercises, day.Exercises[idx+1:]...)
	return s.stage(engine.RemoveUpdate{Exercises: exercises, Index: idx}), nil
}

// ProposeReorder stages moving the exercise at from to position to. Moving an
// exercise onto itself stages nothing and returns a nil update.
func (s *Service) ProposeReorder(from, to int) (engine.PendingUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := s.proposalDay()
	if err != nil {
		return nil, err
	}
	n := len(day.Exercises)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, ErrInvalidMove
	}
	if from == to {
		return nil, nil
	}

	exercises := workout.CloneExercises(day.Exercises)
	moved := exercises[from]
	exercises = append(exercises[:from], exercises[from+1:]...)
	exercises = append(exercises[:to], append([]workout.Exercise{moved}, exercises[to:]...)...)
	return s.stage(engine.ReorderUpdate{Exercises: exercises}), nil
}

// DismissPending discards the staged update. Edit mode is kept.
func (s *Service) DismissPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.pending = nil
}

// ApplyPending propagates the staged update with scope, persists both
// collections and clears the pending update and edit mode.
func (s *Service) ApplyPending(ctx context.Context, scope workout.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := workout.ParseScope(string(scope)); err != nil {
		return err
	}
	if s.sel.pending == nil {
		return ErrNoPendingUpdate
	}
	plan, pi, err := s.activePlan()
	if err != nil {
		return err
	}
	ti := workout.FindTrackerForPlan(s.trackers, plan.ID)
	if ti < 0 {
		return ErrNoTracker
	}

	cur := engine.Cursor{Repetition: s.viewedIndex(ti), Week: s.sel.week, Day: s.sel.day}
	out, err := engine.ApplyScope(plan, &s.trackers[ti], cur, s.sel.pending, scope, s.newID)
	if err != nil {
		return err
	}
	if !out.Applied {
		return nil
	}

	plans := replaceAt(s.plans, pi, out.Plan)
	trackers := replaceAt(s.trackers, ti, out.Tracker)
	if err := s.save(ctx, plans, trackers); err != nil {
		return err
	}

	kind := string(s.sel.pending.Kind())
	s.plans = plans
	s.trackers = trackers
	s.sel.pending = nil
	s.sel.editingID = ""
	s.recorder.ScopeApplied(string(scope), kind)

	s.logger.Info("pending update applied", "action", "apply", "plan_id", plan.ID,
		"scope", scope, "kind", kind, "week", cur.Week, "day", cur.Day)
	return nil
}

// DeletePlan removes a plan. Its tracker is kept. Without confirmation
// nothing changes.
func (s *Service) DeletePlan(ctx context.Context, id string, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !confirmed {
		return ErrNotConfirmed
	}
	idx := workout.FindPlan(s.plans, id)
	if idx < 0 {
		return ErrPlanNotFound
	}

	plans := make([]workout.WorkoutPlan, 0, len(s.plans)-1)
	plans = append(plans, s.plans[:idx]...)
	plans = append(plans, s.plans[idx+1:]...)
	if err := s.save(ctx, plans, nil); err != nil {
		return err
	}
	s.plans = plans
	if s.sel.planID == id {
		s.sel = selection{}
	}

	s.logger.Info("plan deleted", "action", "delete_plan", "plan_id", id)
	return nil
}

// Plans returns the stored plans. The result must not be modified.
func (s *Service) Plans() []workout.WorkoutPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.plans)
}

// Plan returns the plan with id.
func (s *Service) Plan(id string) (workout.WorkoutPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := workout.FindPlan(s.plans, id)
	if idx < 0 {
		return workout.WorkoutPlan{}, ErrPlanNotFound
	}
	return s.plans[idx], nil
}

// Tracker returns the tracker of planID.
func (s *Service) Tracker(planID string) (workout.Tracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ti := workout.FindTrackerForPlan(s.trackers, planID)
	if ti < 0 {
		return workout.Tracker{}, false
	}
	return s.trackers[ti], true
}

// Trackers returns every stored tracker. The result must not be modified.
func (s *Service) Trackers() []workout.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.trackers)
}

// View returns a snapshot of the session.
func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Week:              s.sel.week,
		DayIndex:          s.sel.day,
		EditingExerciseID: s.sel.editingID,
		Pending:           pendingView(s.sel.pending),
	}
	plan, _, err := s.activePlan()
	if err != nil {
		return v
	}
	p := *plan
	v.Plan = &p

	ti := workout.FindTrackerForPlan(s.trackers, plan.ID)
	if ti < 0 {
		return v
	}
	t := s.trackers[ti]
	v.Tracker = &t
	if len(t.Repetitions) == 0 {
		return v
	}
	v.Repetition = s.viewedIndex(ti)
	rep := t.Repetitions[v.Repetition]
	v.RepetitionLabel = RepetitionLabel(rep, v.Repetition)

	if day, err := s.currentDay(); err == nil {
		d := *day
		v.Day = &d
		v.Sets = setsFor(rep, s.sel.week, d)
	}
	return v
}

// Selected returns the ID of the selected plan, or "".
func (s *Service) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.planID
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}

// --- helpers, callers hold s.mu ---

func (s *Service) activePlan() (*workout.WorkoutPlan, int, error) {
	if s.sel.planID == "" {
		return nil, -1, ErrNoPlanSelected
	}
	idx := workout.FindPlan(s.plans, s.sel.planID)
	if idx < 0 {
		return nil, -1, ErrPlanNotFound
	}
	return &s.plans[idx], idx, nil
}

func (s *Service) activeTracker() (*workout.WorkoutPlan, int, error) {
	plan, _, err := s.activePlan()
	if err != nil {
		return nil, -1, err
	}
	ti := workout.FindTrackerForPlan(s.trackers, plan.ID)
	if ti < 0 || len(s.trackers[ti].Repetitions) == 0 {
		return nil, -1, ErrNoTracker
	}
	return plan, ti, nil
}

func (s *Service) activeRepetition() (*workout.TrackerRepetition, int, error) {
	_, ti, err := s.activeTracker()
	if err != nil {
		return nil, -1, err
	}
	ri := s.viewedIndex(ti)
	return &s.trackers[ti].Repetitions[ri], ri, nil
}

// viewedIndex clamps the viewed repetition to the tracker's repetitions.
func (s *Service) viewedIndex(ti int) int {
	return clamp(s.sel.repetition, len(s.trackers[ti].Repetitions))
}

func (s *Service) currentDay() (*workout.WorkoutDay, error) {
	rep, _, err := s.activeRepetition()
	if err != nil {
		return nil, err
	}
	if s.sel.week < 0 || s.sel.week >= len(rep.Weeks) {
		return nil, ErrNoDay
	}
	days := rep.Weeks[s.sel.week].Days
	if s.sel.day < 0 || s.sel.day >= len(days) {
		return nil, ErrNoDay
	}
	return &days[s.sel.day], nil
}

// proposalDay is currentDay for operations that stage a new update.
func (s *Service) proposalDay() (*workout.WorkoutDay, error) {
	if s.sel.pending != nil {
		return nil, ErrPendingUpdate
	}
	return s.currentDay()
}

func (s *Service) stage(u engine.PendingUpdate) engine.PendingUpdate {
	s.sel.pending = u
	s.recorder.Proposed(string(u.Kind()))
	return u
}

// save persists whichever collections are non-nil.
func (s *Service) save(ctx context.Context, plans []workout.WorkoutPlan, trackers []workout.Tracker) error {
	if plans != nil {
		if err := s.store.SavePlans(ctx, plans); err != nil {
			s.logger.Error("save plans failed", "error", err)
			return fmt.Errorf("save plans: %w", err)
		}
	}
	if trackers != nil {
		if err := s.store.SaveTrackers(ctx, trackers); err != nil {
			s.logger.Error("save trackers failed", "error", err)
			return fmt.Errorf("save trackers: %w", err)
		}
	}
	return nil
}

func daysIn(rep *workout.TrackerRepetition, week int) int {
	if week < 0 || week >= len(rep.Weeks) {
		return 0
	}
	return len(rep.Weeks[week].Days)
}

// clamp bounds i to [0, n-1], or 0 when n is 0.
func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func exerciseIndex(exercises []workout.Exercise, id string) int {
	for i, ex := range exercises {
		if ex.ID == id {
			return i
		}
	}
	return -1
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return out
}

func replaceAt[T any](s []T, i int, v T) []T {
	out := cloneSlice(s)
	out[i] = v
	return out
}
