package chart

import (
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		kind    CategoryKind
		want    string
		wantErr bool
	}{
		{"42", KindNumber, "42", false},
		{" 3.5 ", KindNumber, "3.5", false},
		{"abc", KindNumber, "", true},
		{"2024-03-01", KindDate, "2024-03-01", false},
		{"2024-03-01T10:30:00Z", KindDate, "2024-03-01T10:30:00Z", false},
		{"March", KindDate, "", true},
		{"March", KindText, "March", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCategory(tt.in, tt.kind)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && c.String() != tt.want {
				t.Errorf("String() = %q, want %q", c.String(), tt.want)
			}
		})
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   CategoryKind
	}{
		{"numbers", []string{"1", "2.5", ""}, KindNumber},
		{"dates", []string{"2024-01-01", "2024-02-01"}, KindDate},
		{"mixed", []string{"1", "Jan"}, KindText},
		{"empty", nil, KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferKind(tt.values); got != tt.want {
				t.Errorf("InferKind(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestCategoryCompare(t *testing.T) {
	d1 := Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	d2 := Date(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if d1.Compare(d2) >= 0 || d2.Compare(d1) <= 0 {
		t.Error("dates should order chronologically")
	}
	if !Number(2).Equal(Number(2)) || Number(2).Equal(Text("2")) {
		t.Error("Equal must compare kind and value")
	}
	if Number(2).Key() == Text("2").Key() {
		t.Error("keys of different kinds must not collide")
	}
}
