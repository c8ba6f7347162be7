package validation

import (
	"fmt"
)

// ValidateExercise checks the user-editable fields of an exercise.
// The prefix is prepended to field names, e.g. "exercises[2]".
func ValidateExercise(prefix, name string, sets int, reps string) []ValidationError {
	c := &Collector{}
	c.Add(ValidateRequired(field(prefix, "name"), name))
	ValidateText(c, field(prefix, "name"), name, MaxNameLength)
	c.Add(ValidateIntRange(field(prefix, "sets"), sets, 1, MaxSets))
	ValidateText(c, field(prefix, "reps"), reps, MaxRepsLength)
	return c.Errors()
}

// ValidateImport checks raw import material before it is sent for parsing.
func ValidateImport(text string, fileData string, mimeType string) []ValidationError {
	c := &Collector{}
	if text == "" && fileData == "" {
		c.Add(&ValidationError{Field: "text", Message: "text or file is required"})
	}
	ValidateText(c, "text", text, MaxImportBytes)
	if fileData != "" {
		c.Add(ValidateRequired("file.mimeType", mimeType))
		if len(fileData) > MaxImportBytes {
			c.Add(&ValidationError{
				Field:   "file.data",
				Message: fmt.Sprintf("exceeds maximum size of %d bytes", MaxImportBytes),
			})
		}
	}
	return c.Errors()
}

// ValidateLogValue checks a weight or reps entry typed during a session.
// Empty values are allowed and clear the field.
func ValidateLogValue(value string) []ValidationError {
	c := &Collector{}
	ValidateText(c, "value", value, MaxLogLength)
	return c.Errors()
}

// ValidateRepetitionName checks a repetition display name.
func ValidateRepetitionName(name string) []ValidationError {
	c := &Collector{}
	ValidateText(c, "name", name, MaxNameLength)
	return c.Errors()
}

func field(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
