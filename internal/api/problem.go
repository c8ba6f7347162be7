package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/validation"
	"github.com/hyperengineering/lifter/internal/workout"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusUnauthorized: {
		typeURI: "https://lifter.dev/errors/unauthorized",
		title:   "Unauthorized",
	},
	http.StatusBadRequest: {
		typeURI: "https://lifter.dev/errors/bad-request",
		title:   "Bad Request",
	},
	http.StatusNotFound: {
		typeURI: "https://lifter.dev/errors/not-found",
		title:   "Not Found",
	},
	http.StatusInternalServerError: {
		typeURI: "https://lifter.dev/errors/internal-error",
		title:   "Internal Server Error",
	},
	http.StatusUnprocessableEntity: {
		typeURI: "https://lifter.dev/errors/validation-error",
		title:   "Validation Error",
	},
	http.StatusServiceUnavailable: {
		typeURI: "https://lifter.dev/errors/service-unavailable",
		title:   "Service Unavailable",
	},
	http.StatusConflict: {
		typeURI: "https://lifter.dev/errors/conflict",
		title:   "Conflict",
	},
	http.StatusForbidden: {
		typeURI: "https://lifter.dev/errors/forbidden",
		title:   "Forbidden",
	},
	http.StatusRequestEntityTooLarge: {
		typeURI: "https://lifter.dev/errors/payload-too-large",
		title:   "Payload Too Large",
	},
	http.StatusPreconditionRequired: {
		typeURI: "https://lifter.dev/errors/confirmation-required",
		title:   "Confirmation Required",
	},
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	pt, ok := problemTypes[status]
	if !ok {
		pt = struct {
			typeURI string
			title   string
		}{
			typeURI: "https://lifter.dev/errors/unknown",
			title:   http.StatusText(status),
		}
	}

	p := Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	pt := problemTypes[http.StatusUnprocessableEntity]

	p := ProblemWithErrors{
		Problem: Problem{
			Type:     pt.typeURI,
			Title:    pt.title,
			Status:   http.StatusUnprocessableEntity,
			Detail:   detail,
			Instance: r.URL.Path,
		},
		Errors: errs,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// WriteProblemConflict writes a 409 Conflict problem response.
func WriteProblemConflict(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusConflict, detail)
}

// WriteProblemForbidden writes a 403 Forbidden problem response.
func WriteProblemForbidden(w http.ResponseWriter, r *http.Request, detail string) {
	WriteProblem(w, r, http.StatusForbidden, detail)
}

// MapAppError converts domain errors to Problem Details responses.
func MapAppError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		WriteProblemWithErrors(w, r, "Request contains invalid fields", verrs)
	case errors.Is(err, app.ErrPlanNotFound), errors.Is(err, app.ErrExerciseNotFound):
		WriteProblem(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrNoPlanSelected),
		errors.Is(err, app.ErrNoTracker),
		errors.Is(err, app.ErrNoDay),
		errors.Is(err, app.ErrNotEditing),
		errors.Is(err, app.ErrPendingUpdate),
		errors.Is(err, app.ErrNoPendingUpdate),
		errors.Is(err, app.ErrImportInProgress):
		WriteProblemConflict(w, r, err.Error())
	case errors.Is(err, app.ErrNotConfirmed):
		WriteProblem(w, r, http.StatusPreconditionRequired, "Repeat the request with confirm=true")
	case errors.Is(err, app.ErrInvalidMove),
		errors.Is(err, app.ErrEmptyImport),
		errors.Is(err, workout.ErrUnknownScope),
		errors.Is(err, parser.ErrUnsupportedFile):
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, parser.ErrUnparseable):
		WriteProblem(w, r, http.StatusUnprocessableEntity, parser.ErrUnparseable.Error())
	case errors.Is(err, app.ErrNoParser):
		WriteProblem(w, r, http.StatusServiceUnavailable, "Plan parser unavailable")
	default:
		// Never expose internal error details to client
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
