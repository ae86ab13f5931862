package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateLineKeyPart(t *testing.T) {
	tests := map[string]struct {
		in   string
		fail string
	}{
		"plain":      {in: "Revenue"},
		"underscore": {in: "gross_margin"},
		"spaces":     {in: "North America"},
		"unicode":    {in: "Zürich"},
		"empty":      {in: "", fail: "empty"},
		"too long":   {in: strings.Repeat("x", maxNameLength+1), fail: "too long"},
		"null byte":  {in: "foo\x00bar", fail: "control"},
		"newline":    {in: "foo\nbar", fail: "control"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateLineKeyPart(tt.in)
			if tt.fail == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !Is(err, ErrCodeInvalidLineKey) {
				t.Fatalf("error = %v, want %s", err, ErrCodeInvalidLineKey)
			}
			if !strings.Contains(err.Error(), tt.fail) {
				t.Errorf("error %q does not mention %q", err, tt.fail)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	ok := []string{"sales.csv", "data/2024/sales.xlsx", "./regions.csv"}
	bad := []string{
		"",
		"/etc/passwd",
		"data/../../secret",
		"data\\sales.csv",
		"sales\x00.csv",
		strings.Repeat("a", maxPathLength+1),
	}
	for _, p := range ok {
		if err := ValidatePath(p); err != nil {
			t.Errorf("ValidatePath(%q) = %v", p, err)
		}
	}
	for _, p := range bad {
		if err := ValidatePath(p); !Is(err, ErrCodeInvalidPath) {
			t.Errorf("ValidatePath(%q) = %v, want %s", p, err, ErrCodeInvalidPath)
		}
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		w, h float64
		ok   bool
	}{
		{800, 600, true},
		{0, 0, true},
		{-1, 600, false},
		{800, -5, false},
		{math.NaN(), 600, false},
		{800, math.Inf(1), false},
	}
	for _, tt := range tests {
		err := ValidateViewport(tt.w, tt.h)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateViewport(%v, %v) = %v", tt.w, tt.h, err)
		}
		if err != nil && GetCode(err) != ErrCodeInvalidViewport {
			t.Errorf("code = %s", GetCode(err))
		}
	}
}

func TestValidateColor(t *testing.T) {
	for in, ok := range map[string]bool{
		"#fff":    true,
		"#01B8AA": true,
		"#01b8aa": true,
		"01b8aa":  false,
		"#01b8a":  false,
		"red":     false,
		"":        false,
	} {
		if err := ValidateColor(in); (err == nil) != ok {
			t.Errorf("ValidateColor(%q) = %v", in, err)
		}
	}
}
