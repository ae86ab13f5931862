package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/linevis/pkg/errors"
)

// captureOutput redirects the status printers for the duration of a test.
func captureOutput(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = prevOut, prevErr })
	return out, errOut
}

func TestStatusPrinters(t *testing.T) {
	out, errOut := captureOutput(t)

	printSuccess("Rendered %s", "sales")
	printFile("sales.svg")
	printStats(2, 4, true)
	printError("broken %d", 1)

	for _, want := range []string{iconSuccess, "Rendered sales", "sales.svg", "2 series", "4 cells", "cached"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("stdout %q missing %q", out.String(), want)
		}
	}
	if strings.Contains(out.String(), "broken") {
		t.Error("errors should not go to stdout")
	}
	if !strings.Contains(errOut.String(), "broken 1") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		printed string
	}{
		{"nil", nil, 0, ""},
		{"cancelled", fmt.Errorf("render: %w", context.Canceled), 130, ""},
		{"invalid input", errors.New(errors.ErrCodeInvalidDataset, "missing value column"), 2, "INVALID_DATASET"},
		{"missing file", errors.New(errors.ErrCodeFileNotFound, "dataset a.csv"), 2, "dataset a.csv"},
		{"plain", fmt.Errorf("disk full"), 1, "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut := captureOutput(t)
			if got := ReportError(tt.err); got != tt.code {
				t.Errorf("ReportError() = %d, want %d", got, tt.code)
			}
			if tt.printed == "" {
				if errOut.Len() != 0 {
					t.Errorf("unexpected output %q", errOut.String())
				}
				return
			}
			if !strings.Contains(errOut.String(), tt.printed) {
				t.Errorf("stderr %q missing %q", errOut.String(), tt.printed)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	got := renderTable([]string{"Cell", "Width"}, [][]string{{"0_0", "120"}, {"0_1", "120"}})
	for _, want := range []string{"Cell", "Width", "0_0", "0_1", "╭"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}
