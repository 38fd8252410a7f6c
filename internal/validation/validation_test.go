package validation

import (
	"testing"

	"github.com/xtxerr/wavehist/internal/errors"
)

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "series.parquet", false},
		{"with hyphen", "series-12.parquet", false},
		{"with underscore", "run_1.snap", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"hidden", ".hidden", true},
		{"slash", "a/b.parquet", true},
		{"backslash", "a\\b", true},
		{"control char", "a\x00b", true},
		{"glob", "*.parquet", true},
		{"space", "a b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.IsValidation(err) {
				t.Errorf("ValidateFileName(%q) should be a validation error", tt.input)
			}
		})
	}
}

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"*.parquet", false},
		{"series-?.parquet", false},
		{"series.parquet", false},
		{"../*.parquet", true},
		{"dir/*.parquet", true},
	}

	for _, tt := range tests {
		err := ValidatePattern(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePattern(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateNameLength(t *testing.T) {
	rules := FileNameRules()
	rules.MaxLength = 4

	if err := ValidateName("abcd", rules); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateName("abcde", rules); err == nil {
		t.Error("expected error for long name")
	}
}

func TestQuoteSQLString(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"a.parquet", "'a.parquet'"},
		{"it's", "'it''s'"},
		{"", "''"},
	}

	for _, tt := range tests {
		if got := QuoteSQLString(tt.input); got != tt.want {
			t.Errorf("QuoteSQLString(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
