package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/linevis/pkg/fonts"
	"github.com/matzehuels/linevis/pkg/geometry"
)

const (
	popupPadding = 6.0
	popupSwatch  = 8.0
	popupOffset  = 10.0
)

const (
	popupCSS = `
    .popup { pointer-events: none; transition: opacity 0.15s ease; }
    .popup[visibility="hidden"] { opacity: 0; }
    .popup[visibility="visible"] { opacity: 1; }
    .popup rect.box { fill: #FFFFFF; stroke: #C8C6C4; }
    .hover-rule { pointer-events: none; }`

	popupJS = `
    (() => {
      document.querySelectorAll('g.cell').forEach(cell => {
        const area = cell.querySelector('.plot-area');
        if (!area) return;
        const xs = (area.dataset.slices || '').split(',').filter(s => s !== '').map(Number);
        const popups = cell.querySelectorAll('.popup');
        const svg = cell.ownerSVGElement;
        const local = e => { const p = svg.createSVGPoint(); p.x = e.clientX; p.y = e.clientY; return p.matrixTransform(cell.getScreenCTM().inverse()); };
        cell.addEventListener('mousemove', e => {
          const x = local(e).x;
          let best = -1, dist = Infinity;
          xs.forEach((v, i) => { const d = Math.abs(v - x); if (d < dist) { best = i; dist = d; } });
          popups.forEach(p => p.setAttribute('visibility', Number(p.dataset.slice) === best ? 'visible' : 'hidden'));
        });
        cell.addEventListener('mouseleave', () => popups.forEach(p => p.setAttribute('visibility', 'hidden')));
      });
    })();`
)

// renderPopups writes one hidden popup per slice of the entry. The hover
// script picks the slice nearest to the pointer from the plot area's
// data-slices attribute.
func renderPopups(buf *bytes.Buffer, e *geometry.Entry, fontSize float64) {
	lh := fonts.LineHeight(fontSize)
	for i, s := range e.Slices {
		if len(s.Tooltip) == 0 {
			continue
		}
		var w float64
		for _, item := range s.Tooltip {
			w = max(w, fonts.TextWidth(item.DisplayName+"  "+item.Value, fontSize))
		}
		w += popupSwatch + 3*popupPadding
		h := float64(len(s.Tooltip)+1)*lh + 2*popupPadding

		x := s.X + popupOffset
		if x+w > e.Plot.Right {
			x = s.X - popupOffset - w
		}
		x = max(x, e.Plot.Left)
		y := e.Plot.Top

		fmt.Fprintf(buf, `    <g class="popup" data-slice="%d" visibility="hidden">`+"\n", i)
		fmt.Fprintf(buf, `      <line class="hover-rule" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
			s.X, e.Plot.Top, s.X, e.Plot.Bottom, axisColor)
		fmt.Fprintf(buf, `      <g transform="translate(%.1f,%.1f)">`+"\n", x, y)
		fmt.Fprintf(buf, `        <rect class="box" width="%.1f" height="%.1f" rx="2"/>`+"\n", w, h)
		fmt.Fprintf(buf, `        <text x="%.1f" y="%.1f" font-size="%.1f" font-weight="600" dominant-baseline="central">%s</text>`+"\n",
			popupPadding, popupPadding+lh/2, fontSize, escapeXML(s.Category))
		for j, item := range s.Tooltip {
			cy := popupPadding + float64(j+1)*lh + lh/2
			fmt.Fprintf(buf, `        <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				popupPadding, cy-popupSwatch/2, popupSwatch, popupSwatch, item.Color)
			fmt.Fprintf(buf, `        <text x="%.1f" y="%.1f" font-size="%.1f" dominant-baseline="central">%s  %s</text>`+"\n",
				2*popupPadding+popupSwatch, cy, fontSize, escapeXML(item.DisplayName), escapeXML(item.Value))
		}
		buf.WriteString("      </g>\n    </g>\n")
	}
}

func renderPopupScript(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", popupCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", popupJS)
}

// sliceXs returns the slice positions of e as an attribute value.
func sliceXs(e *geometry.Entry) string {
	xs := make([]string, len(e.Slices))
	for i, s := range e.Slices {
		xs[i] = fmt.Sprintf("%.1f", s.X)
	}
	return strings.Join(xs, ",")
}
