// Package pkg provides the libraries behind linevis, a small-multiples line
// chart engine with lasso, line and legend selection.
//
// # Overview
//
// A dataset of (category, series, row, column, value) records is split into
// a grid of sub-charts, one per (row, column) pair, each holding one line per
// series. The packages are layered bottom-up:
//
//  1. [chart] - tables, models, line keys and identities
//  2. [dataset] - CSV, TSV, XLSX, JSON and YAML readers
//  3. [settings] - TOML formatting settings
//  4. [legend], [layout] - legend measurement and the small-multiple grid
//  5. [geometry] - rectangles, segments and the hit-test index
//  6. [selection], [behavior] - selection state and the drivers on top of it
//  7. [render] - SVG output plus PNG/PDF/JSON conversion
//  8. [visual] - the stateful host that ties everything together
//  9. [pipeline], [cache] - cached batch runs for the CLI and the server
//
// # Data Flow
//
//	Dataset file / document
//	         ↓
//	    [dataset] (table)
//	         ↓
//	    [chart] (model)
//	         ↓
//	    [layout] + [legend] (grid)
//	         ↓
//	    [render] (SVG + geometry index)
//	         ↓
//	    [visual] (events → selection → redraw)
//
// # Quick Start
//
//	table, err := dataset.ReadFile("regions.csv", dataset.Options{})
//	if err != nil {
//	    return err
//	}
//	v := visual.New(visual.Config{Settings: settings.Default()})
//	defer v.Close()
//	if err := v.Update(ctx, table, geometry.Size{Width: 900, Height: 600}); err != nil {
//	    return err
//	}
//	v.MouseDown(geometry.Point{X: 120, Y: 140})
//	v.MouseUp(geometry.Point{X: 400, Y: 330})
//	svg := v.Render()
//
// [chart]: github.com/matzehuels/linevis/pkg/chart
// [dataset]: github.com/matzehuels/linevis/pkg/dataset
// [settings]: github.com/matzehuels/linevis/pkg/settings
// [legend]: github.com/matzehuels/linevis/pkg/legend
// [layout]: github.com/matzehuels/linevis/pkg/layout
// [geometry]: github.com/matzehuels/linevis/pkg/geometry
// [selection]: github.com/matzehuels/linevis/pkg/selection
// [behavior]: github.com/matzehuels/linevis/pkg/behavior
// [render]: github.com/matzehuels/linevis/pkg/render
// [visual]: github.com/matzehuels/linevis/pkg/visual
// [pipeline]: github.com/matzehuels/linevis/pkg/pipeline
// [cache]: github.com/matzehuels/linevis/pkg/cache
package pkg
