// Package behavior implements the three interaction modalities of a
// visual: clicking a line, clicking the legend and dragging a lasso.
//
// Each behavior holds the shared [selection.State] and a
// [selection.Handler]; none of them refers to another. Competing
// modalities are cleared on the state before a behavior writes, so at most
// one of them determines opacity at any time:
//
//   - [Line] clears legend labels and any lasso, then toggles a series.
//   - [Legend] clears any lasso and its selection, then edits the labels.
//   - [Lasso] clears the selection and labels on mousedown.
//
// Behaviors never cache cell geometry across events. The lasso resolves
// its cell from a [Surface] on every mouse event so that a rebuild between
// two events cannot leave it pointing at stale geometry.
package behavior
