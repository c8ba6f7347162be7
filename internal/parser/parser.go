// Package parser turns free-form workout programs into structured plans using
// an external language model.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/lifter/internal/validation"
	"github.com/hyperengineering/lifter/internal/workout"
)

// DefaultDurationWeeks is used when the program does not state its length.
const DefaultDurationWeeks = 4

// Limits on model output. Anything larger is treated as unparseable.
const (
	MaxDurationWeeks = 104
	MaxDays          = 14
	MaxExercises     = 50
)

// ErrUnparseable is returned when the model output is not a usable plan.
var ErrUnparseable = errors.New("could not parse the workout plan, please ensure the content is clear")

// Parser defines the contract for plan parsing services.
type Parser interface {
	ParsePlan(ctx context.Context, in Input) (*ParsedPlan, error)
	ModelName() string
}

// Input is the material submitted for import. Either field may be empty, not both.
type Input struct {
	Text string
	File *File
}

// File is an uploaded document. Data is base64 encoded.
type File struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// Empty reports whether there is nothing to parse.
func (in Input) Empty() bool {
	return strings.TrimSpace(in.Text) == "" && in.File == nil
}

// ParsedPlan is the structured result returned by the model.
type ParsedPlan struct {
	Name          string      `json:"name"`
	DurationWeeks int         `json:"durationWeeks"`
	Days          []ParsedDay `json:"days"`
}

// ParsedDay is one training day of the program.
type ParsedDay struct {
	DayName   string           `json:"dayName"`
	Focus     string           `json:"focus"`
	Exercises []ParsedExercise `json:"exercises"`
}

// ParsedExercise is one exercise line of a day.
type ParsedExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
}

// decodePlan reads the model's JSON answer, tolerating a markdown code fence.
func decodePlan(content string) (*ParsedPlan, error) {
	content = stripFence(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUnparseable)
	}

	var plan ParsedPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if plan.Days == nil {
		return nil, fmt.Errorf("%w: no days in response", ErrUnparseable)
	}
	if err := plan.Check(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Check rejects plans too large to expand. The result wraps ErrUnparseable.
func (p *ParsedPlan) Check() error {
	if p.DurationWeeks > MaxDurationWeeks {
		return fmt.Errorf("%w: durationWeeks %d exceeds %d", ErrUnparseable, p.DurationWeeks, MaxDurationWeeks)
	}
	if len(p.Days) > MaxDays {
		return fmt.Errorf("%w: %d days exceeds %d", ErrUnparseable, len(p.Days), MaxDays)
	}
	for _, d := range p.Days {
		if len(d.Exercises) > MaxExercises {
			return fmt.Errorf("%w: %q has %d exercises", ErrUnparseable, d.DayName, len(d.Exercises))
		}
		for _, ex := range d.Exercises {
			if ex.Sets > validation.MaxSets {
				return fmt.Errorf("%w: %q has %d sets", ErrUnparseable, ex.Name, ex.Sets)
			}
		}
	}
	return nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// BuildPlan expands the parsed day list into a multi-week template. Each week
// gets its own copy of the days with fresh day and exercise IDs. Callers run
// Check first.
func BuildPlan(parsed ParsedPlan, now time.Time) workout.WorkoutPlan {
	weeksCount := parsed.DurationWeeks
	if weeksCount <= 0 {
		weeksCount = DefaultDurationWeeks
	}

	days := make([]workout.WorkoutDay, len(parsed.Days))
	for i, d := range parsed.Days {
		exercises := make([]workout.Exercise, len(d.Exercises))
		for j, ex := range d.Exercises {
			sets := ex.Sets
			if sets < 1 {
				sets = 1
			}
			exercises[j] = workout.Exercise{Name: ex.Name, Sets: sets, Reps: ex.Reps}
		}
		days[i] = workout.WorkoutDay{DayName: d.DayName, Focus: d.Focus, Exercises: exercises}
	}

	weeks := make([]workout.WorkoutWeek, weeksCount)
	for w := range weeks {
		week := workout.WorkoutWeek{Days: make([]workout.WorkoutDay, len(days))}
		for i, d := range days {
			week.Days[i] = workout.CloneDayFresh(d)
		}
		weeks[w] = week
	}

	return workout.WorkoutPlan{
		ID:            workout.NewID(),
		Name:          parsed.Name,
		DurationWeeks: weeksCount,
		Weeks:         weeks,
		CreatedAt:     workout.NowMillis(now),
	}
}
