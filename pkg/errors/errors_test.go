package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	cause := errors.New("no such file")
	tests := []struct {
		name string
		err  *Error
		want string
		msg  string
	}{
		{"new", New(ErrCodeInvalidLineKey, "bad key %q", "x"), `INVALID_LINE_KEY: bad key "x"`, `bad key "x"`},
		{"wrap", Wrap(ErrCodeFileNotFound, cause, "dataset %s", "a.csv"), "FILE_NOT_FOUND: dataset a.csv: no such file", "dataset a.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrCodeInvalidSettings, cause, "load settings")
	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable with errors.Is")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeInvalidViewport, "negative width")
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", inner, ErrCodeInvalidViewport},
		{"fmt wrapped", fmt.Errorf("update: %w", inner), ErrCodeInvalidViewport},
		{"outermost wins", Wrap(ErrCodeInvalidEvent, inner, "event 0"), ErrCodeInvalidEvent},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeInternal) {
				t.Error("Is(ErrCodeInternal) should be false")
			}
		})
	}
}

func TestUserMessagePlain(t *testing.T) {
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHostMapping(t *testing.T) {
	tests := []struct {
		err    error
		class  Class
		status int
		exit   int
	}{
		{New(ErrCodeInvalidDataset, "x"), ClassInvalid, http.StatusBadRequest, 2},
		{New(ErrCodeInvalidEvent, "x"), ClassInvalid, http.StatusBadRequest, 2},
		{New(ErrCodeFileNotFound, "x"), ClassNotFound, http.StatusNotFound, 2},
		{New(ErrCodeUnsupported, "x"), ClassUnsupported, http.StatusNotImplemented, 1},
		{New(ErrCodeInternal, "x"), ClassInternal, http.StatusInternalServerError, 1},
		{New(Code("SOMETHING_ELSE"), "x"), ClassInternal, http.StatusInternalServerError, 1},
		{errors.New("plain"), ClassInternal, http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := ClassOf(tt.err); got != tt.class {
				t.Errorf("ClassOf() = %d, want %d", got, tt.class)
			}
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
			if got := ExitCode(tt.err); got != tt.exit {
				t.Errorf("ExitCode() = %d, want %d", got, tt.exit)
			}
		})
	}
	if ExitCode(nil) != 0 {
		t.Error("ExitCode(nil) should be 0")
	}
}
