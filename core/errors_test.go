package core

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	cause := errors.New("a submission requires at least one file")

	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantFields int
	}{
		{
			name:    "fields only",
			err:     NewValidationError(nil, FieldError{Field: "password", Error: "this field is required"}),
			wantMsg: "", wantFields: 1,
		},
		{
			name:    "cause and fields",
			err:     NewValidationError(cause, FieldError{Field: "files", Error: cause.Error()}),
			wantMsg: cause.Error(), wantFields: 1,
		},
		{
			name:    "multiple fields",
			err:     NewValidationError(nil, FieldError{Field: "name", Error: "this field is required"}, FieldError{Field: "password", Error: "this field is required"}),
			wantMsg: "", wantFields: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vErr *ValidationError
			if !errors.As(tt.err, &vErr) {
				t.Fatalf("NewValidationError() returned %T", tt.err)
			}
			if vErr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", vErr.Error(), tt.wantMsg)
			}
			if len(vErr.Fields) != tt.wantFields {
				t.Errorf("Fields len = %d, want %d", len(vErr.Fields), tt.wantFields)
			}
		})
	}
}
