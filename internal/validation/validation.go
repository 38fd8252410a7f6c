// Package validation provides centralized input validation for wavehist.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xtxerr/wavehist/internal/errors"
)

// =============================================================================
// Name Validation
// =============================================================================

// NameRules defines the validation rules for file names.
type NameRules struct {
	MinLength    int
	MaxLength    int
	AllowDots    bool
	AllowHyphens bool
	AllowUnders  bool
	AllowGlob    bool
}

// FileNameRules returns the rules for export and snapshot file names.
func FileNameRules() NameRules {
	return NameRules{
		MinLength:    1,
		MaxLength:    255,
		AllowDots:    true,
		AllowHyphens: true,
		AllowUnders:  true,
	}
}

// PatternRules returns the rules for glob patterns over export files.
func PatternRules() NameRules {
	r := FileNameRules()
	r.AllowGlob = true
	return r
}

// ValidateName validates a name according to the given rules.
func ValidateName(name string, rules NameRules) error {
	if len(name) < rules.MinLength {
		return fmt.Errorf("name too short: minimum %d characters required", rules.MinLength)
	}
	if len(name) > rules.MaxLength {
		return fmt.Errorf("name too long: maximum %d characters allowed", rules.MaxLength)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be '.' or '..'")
	}

	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("name cannot start with '.'")
	}

	for i, r := range name {
		if r < 32 || r == 127 {
			return fmt.Errorf("name cannot contain control characters at position %d", i)
		}
		if r == '/' || r == '\\' {
			return fmt.Errorf("name cannot contain path separators at position %d", i)
		}
		if !isAllowedNameChar(r, rules) {
			return fmt.Errorf("invalid character '%c' at position %d", r, i)
		}
	}

	return nil
}

func isAllowedNameChar(r rune, rules NameRules) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '.':
		return rules.AllowDots
	case '-':
		return rules.AllowHyphens
	case '_':
		return rules.AllowUnders
	case '*', '?':
		return rules.AllowGlob
	}
	return false
}

// ValidateFileName validates a file name relative to the export directory.
func ValidateFileName(name string) error {
	if err := ValidateName(name, FileNameRules()); err != nil {
		return errors.NewInvalidValue("file name", name, err.Error())
	}
	return nil
}

// ValidatePattern validates a glob pattern relative to the export directory.
func ValidatePattern(pattern string) error {
	if err := ValidateName(pattern, PatternRules()); err != nil {
		return errors.NewInvalidValue("pattern", pattern, err.Error())
	}
	return nil
}

// =============================================================================
// SQL Literals
// =============================================================================

// QuoteSQLString returns s as a single-quoted SQL string literal.
func QuoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
