// Package fonts provides the font stack and text metrics used for SVG rendering.
//
// linevis never rasterizes text itself. Label widths are estimated from
// per-rune advance ratios so that layout, legend measurement and label
// truncation agree on how much space a string takes.
package fonts

import (
	"strings"
	"unicode"
)

// FontFamily is the primary CSS font-family used for labels.
const FontFamily = "Segoe UI"

// FallbackFontFamily provides fallback fonts for systems without the primary font.
const FallbackFontFamily = `'Segoe UI', wf_segoe-ui_normal, helvetica, arial, sans-serif`

// Advance ratios relative to the font size.
const (
	charWidth   = 0.55
	narrowWidth = 0.3
	wideWidth   = 0.8
	spaceWidth  = 0.28
)

// Ellipsis is appended to truncated labels.
const Ellipsis = "…"

// RuneWidth estimates the advance of r at the given font size.
func RuneWidth(r rune, size float64) float64 {
	switch {
	case unicode.IsSpace(r):
		return size * spaceWidth
	case strings.ContainsRune("il.,:;|!'`ftjI1()[]", r):
		return size * narrowWidth
	case strings.ContainsRune("mwMW@%", r) || r > unicode.MaxLatin1:
		return size * wideWidth
	default:
		return size * charWidth
	}
}

// TextWidth estimates the rendered width of s at the given font size.
func TextWidth(s string, size float64) float64 {
	w := 0.0
	for _, r := range s {
		w += RuneWidth(r, size)
	}
	return w
}

// LineHeight returns the vertical advance of one line of text.
func LineHeight(size float64) float64 { return size * 1.4 }

// Truncate shortens s so it fits into maxWidth at the given font size,
// appending an ellipsis when anything was cut.
func Truncate(s string, size, maxWidth float64) string {
	if TextWidth(s, size) <= maxWidth {
		return s
	}
	budget := maxWidth - TextWidth(Ellipsis, size)
	if budget <= 0 {
		return ""
	}
	w := 0.0
	for i, r := range s {
		w += RuneWidth(r, size)
		if w > budget {
			if i == 0 {
				return ""
			}
			return s[:i] + Ellipsis
		}
	}
	return s
}
