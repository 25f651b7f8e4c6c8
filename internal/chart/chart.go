// Package chart renders report artifacts as standalone SVG images.
package chart

import (
	"context"
	"errors"

	"timetrack/internal/core"
)

// Artifact is a rendered image ready to attach to a reply.
type Artifact struct {
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Data        []byte `json:"data"`
}

// Renderer turns reports into images. Callers treat a nil Renderer as "no charts".
type Renderer interface {
	RenderDaily(ctx context.Context, r core.DailyReport) (Artifact, error)
	RenderRange(ctx context.Context, r core.RangeReport) (Artifact, error)
}

var ErrEmptyReport = errors.New("nothing to render")

var palette = map[core.Category]string{
	core.Work:          "#ff6b6b",
	core.Sleep:         "#4ecdc4",
	core.Rest:          "#45b7d1",
	core.Study:         "#96ceb4",
	core.Entertainment: "#feca57",
}

func colorOf(c core.Category) string {
	if v, ok := palette[c]; ok {
		return v
	}
	return "#999999"
}
