package chart

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CategoryKind discriminates the value held by a [Category].
type CategoryKind int

const (
	KindText CategoryKind = iota
	KindNumber
	KindDate
)

var kindNames = map[CategoryKind]string{
	KindText:   "text",
	KindNumber: "number",
	KindDate:   "date",
}

func (k CategoryKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("CategoryKind(%d)", int(k))
}

// Category is a value on the category (x) axis.
type Category struct {
	Kind   CategoryKind
	Text   string
	Number float64
	Time   time.Time
}

// Text returns a text category.
func Text(s string) Category { return Category{Kind: KindText, Text: s} }

// Number returns a numeric category.
func Number(f float64) Category { return Category{Kind: KindNumber, Number: f} }

// Date returns a date category.
func Date(t time.Time) Category { return Category{Kind: KindDate, Time: t.UTC()} }

// String formats the category for axis labels and tooltips.
func (c Category) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'g', -1, 64)
	case KindDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format(time.DateOnly)
		}
		return c.Time.Format(time.RFC3339)
	default:
		return c.Text
	}
}

// Equal reports whether two categories denote the same axis position.
func (c Category) Equal(o Category) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindNumber:
		return c.Number == o.Number
	case KindDate:
		return c.Time.Equal(o.Time)
	default:
		return c.Text == o.Text
	}
}

// Compare orders categories of the same kind by value. Categories of
// different kinds order by kind.
func (c Category) Compare(o Category) int {
	if c.Kind != o.Kind {
		return cmp.Compare(c.Kind, o.Kind)
	}
	switch c.Kind {
	case KindNumber:
		return cmp.Compare(c.Number, o.Number)
	case KindDate:
		return c.Time.Compare(o.Time)
	default:
		return strings.Compare(c.Text, o.Text)
	}
}

// Key returns a string usable as a map key. Keys of different kinds never collide.
func (c Category) Key() string {
	return c.Kind.String() + ":" + c.String()
}

// Continuous reports whether the category is positioned by value rather
// than by ordinal index.
func (c Category) Continuous() bool {
	return c.Kind == KindNumber || c.Kind == KindDate
}

// Float returns the numeric position of a continuous category
// (seconds since the epoch for dates).
func (c Category) Float() float64 {
	switch c.Kind {
	case KindNumber:
		return c.Number
	case KindDate:
		return float64(c.Time.Unix())
	default:
		return 0
	}
}

// dateLayouts lists the accepted date formats, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateTime, time.DateOnly, "2006-01"}

// ParseCategory parses s as a category of the given kind.
func ParseCategory(s string, kind CategoryKind) (Category, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case KindNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Category{}, fmt.Errorf("parse number category %q: %w", s, err)
		}
		return Number(f), nil
	case KindDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Date(t), nil
			}
		}
		return Category{}, fmt.Errorf("parse date category %q: unrecognized format", s)
	default:
		return Text(s), nil
	}
}

// InferKind picks the narrowest kind all non-empty values parse as.
func InferKind(values []string) CategoryKind {
	numbers, dates, seen := true, true, 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		seen++
		if numbers {
			if _, err := ParseCategory(v, KindNumber); err != nil {
				numbers = false
			}
		}
		if dates {
			if _, err := ParseCategory(v, KindDate); err != nil {
				dates = false
			}
		}
		if !numbers && !dates {
			return KindText
		}
	}
	switch {
	case seen == 0:
		return KindText
	case numbers:
		return KindNumber
	case dates:
		return KindDate
	default:
		return KindText
	}
}
