package errors

import (
	"fmt"
	"testing"
)

func TestCategoryChecks(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		validation bool
		state      bool
	}{
		{"not found", NewNotFound("export", "a.parquet"), true, false, false},
		{"channel", NewChannelOutOfRange(3, 2), false, true, false},
		{"width", NewWidthMismatch(1, 2), false, true, false},
		{"wrapped validation", Wrap(NewValidation("capacity", "must be positive"), "load"), false, true, false},
		{"closed", Wrapf(ErrWriterClosed, "write %d rows", 10), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.notFound)
			}
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation = %v, want %v", got, tt.validation)
			}
			if got := IsStateError(tt.err); got != tt.state {
				t.Errorf("IsStateError = %v, want %v", got, tt.state)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	if v.Err() != nil {
		t.Error("empty collector should return nil")
	}

	v.Add(nil)
	if v.HasErrors() {
		t.Error("Add(nil) should be ignored")
	}

	v.AddField("capacity", "must be positive")
	v.AddMissing("export.dir")

	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !Is(err, ErrInvalidConfig) {
		t.Error("expected errors.Is to match the first error")
	}

	want := fmt.Sprintf("validation failed with 2 errors:\n  - %s\n  - %s", v.Errors[0], v.Errors[1])
	if err.Error() != want {
		t.Errorf("unexpected message:\n%s", err.Error())
	}
}
