package app

import "errors"

var (
	// ErrNoPlanSelected is returned by session operations before a plan is selected.
	ErrNoPlanSelected = errors.New("no plan selected")

	// ErrPlanNotFound is returned when a plan ID does not exist.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrNoTracker is returned when the selected plan has no tracker yet.
	ErrNoTracker = errors.New("plan has no tracker")

	// ErrNoDay is returned when the cursor does not address an existing day.
	ErrNoDay = errors.New("no workout day at the current position")

	// ErrExerciseNotFound is returned when an exercise is not in the current day.
	ErrExerciseNotFound = errors.New("exercise not found in current day")

	// ErrInvalidMove is returned when a reorder position is out of range.
	ErrInvalidMove = errors.New("exercise position out of range")

	// ErrNotEditing is returned by ProposeEdit when no exercise is being edited.
	ErrNotEditing = errors.New("no exercise is being edited")

	// ErrPendingUpdate is returned when a pending update must be applied or
	// dismissed first.
	ErrPendingUpdate = errors.New("a pending update is awaiting a scope")

	// ErrNoPendingUpdate is returned by ApplyPending with nothing to apply.
	ErrNoPendingUpdate = errors.New("no pending update")

	// ErrNotConfirmed is returned by destructive operations called without confirmation.
	ErrNotConfirmed = errors.New("confirmation required")

	// ErrImportInProgress is returned while another import is being parsed.
	ErrImportInProgress = errors.New("an import is already in progress")

	// ErrNoParser is returned by Import when no plan parser is configured.
	ErrNoParser = errors.New("plan parser not configured")

	// ErrEmptyImport is returned when neither text nor a file was supplied.
	ErrEmptyImport = errors.New("import needs text or a file")
)
