package geometry

import "math"

// Point is a screen-space coordinate in pixels.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is a width/height pair in pixels.
type Size struct {
	Width, Height float64
}

// Clamp returns s with negative or NaN dimensions replaced by zero.
func (s Size) Clamp() Size {
	return Size{nonNegative(s.Width), nonNegative(s.Height)}
}

// Rect is an axis-aligned rectangle. A Rect built with [RectFromPoints] is
// always normalised so Left <= Right and Top <= Bottom.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromPoints returns the normalised rectangle spanned by a and b.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// RectFromSize returns the rectangle at origin with the given size.
func RectFromSize(origin Point, s Size) Rect {
	return Rect{origin.X, origin.Y, origin.X + s.Width, origin.Y + s.Height}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }
func (r Rect) Size() Size      { return Size{r.Width(), r.Height()} }
func (r Rect) Min() Point      { return Point{r.Left, r.Top} }

// Contains reports whether p lies inside r, boundary included.
func (r Rect) Contains(p Point) bool {
	return r.Left <= p.X && p.X <= r.Right && r.Top <= p.Y && p.Y <= r.Bottom
}

// Clamp returns the point of r closest to p.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: math.Max(r.Left, math.Min(p.X, r.Right)),
		Y: math.Max(r.Top, math.Min(p.Y, r.Bottom)),
	}
}

// Degenerate reports whether r encloses no area.
func (r Rect) Degenerate() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{r.Left + d.X, r.Top + d.Y, r.Right + d.X, r.Bottom + d.Y}
}

// Inset shrinks r by the given amounts, never past a zero size.
func (r Rect) Inset(left, top, right, bottom float64) Rect {
	out := Rect{r.Left + left, r.Top + top, r.Right - right, r.Bottom - bottom}
	if out.Right < out.Left {
		out.Right = out.Left
	}
	if out.Bottom < out.Top {
		out.Bottom = out.Top
	}
	return out
}

// Segment is a straight line between two screen points.
type Segment struct {
	From, To Point
}

// Intersects reports whether any part of s lies within r.
func (s Segment) Intersects(r Rect) bool {
	if r.Contains(s.From) || r.Contains(s.To) {
		return true
	}
	edges := [4]Segment{
		{Point{r.Left, r.Top}, Point{r.Right, r.Top}},
		{Point{r.Right, r.Top}, Point{r.Right, r.Bottom}},
		{Point{r.Right, r.Bottom}, Point{r.Left, r.Bottom}},
		{Point{r.Left, r.Bottom}, Point{r.Left, r.Top}},
	}
	for _, e := range edges {
		if segmentsCross(s, e) {
			return true
		}
	}
	return false
}

func segmentsCross(a, b Segment) bool {
	d1 := orient(b.From, b.To, a.From)
	d2 := orient(b.From, b.To, a.To)
	d3 := orient(a.From, a.To, b.From)
	d4 := orient(a.From, a.To, b.To)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func nonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
