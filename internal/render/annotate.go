package render

import (
	"fmt"
	"image"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"

	"github.com/akulov/orbitsim/internal/orbit"
)

const (
	dpi      = 72.0
	fontSize = 14.0
)

// Annotator draws the telemetry HUD (angle, orbital speed, altitude) onto
// rendered frames.
type Annotator struct {
	context *freetype.Context
}

// NewAnnotator loads a TTF font from fontPath and prepares a drawing context.
func NewAnnotator(fontPath string) (*Annotator, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	return &Annotator{context: ctx}, nil
}

// Annotate draws the HUD line for the satellite's current state along the
// top edge of the frame.
func (a *Annotator) Annotate(img *image.RGBA, sat *orbit.Satellite, speed int) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	hud := fmt.Sprintf("angle %d°  speed %s km/h  altitude %s km",
		sat.AngleDeg,
		humanize.Comma(int64(speed)),
		humanize.Comma(int64(sat.Altitude)))

	pt := freetype.Pt(10, 10+int(a.context.PointToFixed(fontSize)>>6))
	if _, err := a.context.DrawString(hud, pt); err != nil {
		return fmt.Errorf("drawing HUD: %w", err)
	}

	return nil
}
