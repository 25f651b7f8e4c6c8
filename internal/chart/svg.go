package chart

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"math"

	"timetrack/internal/core"
)

const svgContentType = "image/svg+xml"

// SVGRenderer draws a pie chart for a day and a bar chart for a range.
type SVGRenderer struct {
	Width  int
	Height int
}

var _ Renderer = SVGRenderer{}

func NewSVGRenderer() SVGRenderer {
	return SVGRenderer{Width: 640, Height: 480}
}

func (s SVGRenderer) RenderDaily(ctx context.Context, r core.DailyReport) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	shares := r.Breakdown()
	if len(shares) == 0 {
		return Artifact{}, ErrEmptyReport
	}

	var b bytes.Buffer
	s.open(&b, "Activities on "+r.Date.String())

	cx, cy := float64(s.Width)*0.35, float64(s.Height)*0.55
	radius := math.Min(float64(s.Width), float64(s.Height)) * 0.35

	if len(shares) == 1 {
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
			cx, cy, radius, colorOf(shares[0].Category))
	} else {
		angle := -math.Pi / 2
		for _, sh := range shares {
			sweep := float64(sh.Minutes) / float64(r.TotalMinutes) * 2 * math.Pi
			writeSlice(&b, cx, cy, radius, angle, angle+sweep, colorOf(sh.Category))
			angle += sweep
		}
	}

	legendX := float64(s.Width) * 0.7
	for i, sh := range shares {
		y := float64(s.Height)*0.3 + float64(i)*28
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="16" height="16" fill="%s"/>`+"\n",
			legendX, y-12, colorOf(sh.Category))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" font-size="14">%s %s</text>`+"\n",
			legendX+24, y, html.EscapeString(sh.Category.Name()), core.FormatPercent(sh.Percent))
	}

	s.close(&b)
	return Artifact{
		ContentType: svgContentType,
		Filename:    "report_" + r.Date.ISO() + ".svg",
		Data:        b.Bytes(),
	}, nil
}

func (s SVGRenderer) RenderRange(ctx context.Context, r core.RangeReport) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if r.IsEmpty() || len(r.Days) == 0 {
		return Artifact{}, ErrEmptyReport
	}

	var b bytes.Buffer
	s.open(&b, fmt.Sprintf("Activities %s - %s", r.Start.Format("02.01"), r.End.String()))

	maxMinutes := 0
	for _, d := range r.Days {
		maxMinutes = max(maxMinutes, d.TotalMinutes)
	}

	left, bottom := 40.0, float64(s.Height)-40
	plotW, plotH := float64(s.Width)-80, float64(s.Height)-100
	slot := plotW / float64(len(r.Days))
	barW := slot * 0.7

	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#333"/>`+"\n",
		left, bottom, left+plotW, bottom)
	for i, d := range r.Days {
		h := float64(d.TotalMinutes) / float64(maxMinutes) * plotH
		x := left + float64(i)*slot + (slot-barW)/2
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#45b7d1"><title>%s: %s</title></rect>`+"\n",
			x, bottom-h, barW, h, d.Date.String(), core.HumanDuration(d.TotalMinutes))
		if len(r.Days) <= 14 {
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" font-size="11" text-anchor="middle">%s</text>`+"\n",
				x+barW/2, bottom+16, d.Date.Format("02.01"))
		}
	}

	s.close(&b)
	return Artifact{
		ContentType: svgContentType,
		Filename:    fmt.Sprintf("report_%s_%s.svg", r.Start.ISO(), r.End.ISO()),
		Data:        b.Bytes(),
	}, nil
}

func (s SVGRenderer) open(b *bytes.Buffer, title string) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	fmt.Fprintf(b, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(b, `<text x="%d" y="32" font-size="18" text-anchor="middle" font-weight="bold">%s</text>`+"\n",
		s.Width/2, html.EscapeString(title))
}

func (s SVGRenderer) close(b *bytes.Buffer) {
	b.WriteString("</svg>\n")
}

func writeSlice(b *bytes.Buffer, cx, cy, r, from, to float64, color string) {
	x1, y1 := cx+r*math.Cos(from), cy+r*math.Sin(from)
	x2, y2 := cx+r*math.Cos(to), cy+r*math.Sin(to)
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	fmt.Fprintf(b, `<path d="M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z" fill="%s" stroke="#fff"/>`+"\n",
		cx, cy, x1, y1, r, r, large, x2, y2, color)
}
