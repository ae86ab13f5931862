package errors

import (
	"math"
	"path"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxNameLength = 256
	maxPathLength = 500
)

// rule is one check applied to a string input. It returns the failure
// message, or "" when s passes.
type rule func(s string) string

func check(code Code, s string, rules ...rule) error {
	for _, r := range rules {
		if msg := r(s); msg != "" {
			return New(code, "%s", msg)
		}
	}
	return nil
}

func notEmpty(what string) rule {
	return func(s string) string {
		if s == "" {
			return what + " cannot be empty"
		}
		return ""
	}
}

func maxLen(what string, n int) rule {
	return func(s string) string {
		if len(s) > n {
			return what + " too long"
		}
		return ""
	}
}

func printable(what string) rule {
	return func(s string) string {
		if strings.IndexFunc(s, unicode.IsControl) >= 0 {
			return what + " contains control characters"
		}
		return ""
	}
}

// ValidateLineKeyPart checks a category or series name before it becomes
// part of a line key. Underscores are fine since the series name is always
// the last component.
func ValidateLineKeyPart(name string) error {
	return check(ErrCodeInvalidLineKey, name,
		notEmpty("name"), maxLen("name", maxNameLength), printable("name"))
}

// ValidatePath checks a dataset path supplied by a remote caller. Only
// forward-slash relative paths that stay below their root are accepted.
func ValidatePath(p string) error {
	return check(ErrCodeInvalidPath, p,
		notEmpty("path"), maxLen("path", maxPathLength), printable("path"),
		func(s string) string {
			switch {
			case strings.ContainsRune(s, '\\'):
				return "path must use forward slashes"
			case path.IsAbs(s):
				return "path must be relative"
			case strings.Contains(s, ".."):
				return "path must not contain .."
			}
			return ""
		})
}

// ValidateViewport rejects negative and non-finite sizes. A zero viewport
// is valid; layout clamps it to the minimum cell size.
func ValidateViewport(width, height float64) error {
	for _, v := range [2]float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return New(ErrCodeInvalidViewport, "invalid viewport %gx%g", width, height)
		}
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#(?:[[:xdigit:]]{3}|[[:xdigit:]]{6})$`)

// ValidateColor accepts #rgb and #rrggbb.
func ValidateColor(color string) error {
	if !hexColor.MatchString(color) {
		return New(ErrCodeInvalidSettings, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}
