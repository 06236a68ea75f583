// Package render rasterizes the orbit scene into RGBA images: a fixed
// central body, the satellite at its current position, and an optional
// telemetry HUD.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/akulov/orbitsim/internal/orbit"
)

// Default scene geometry, matching a 600x600 viewport with the body at its
// center. All of it is overridable through SceneConfig.
const (
	defaultWidth           = 600
	defaultHeight          = 600
	defaultBodyRadius      = 50
	defaultSatelliteRadius = 10
	defaultAltitudeScale   = 1.0
)

var (
	defaultBackground     = color.RGBA{0, 0, 0, 255}
	defaultBodyColor      = color.RGBA{0, 0, 255, 255}
	defaultSatelliteColor = color.RGBA{0, 255, 0, 255}
)

// SceneConfig describes the viewport geometry and colors. Zero values fall
// back to the defaults above.
type SceneConfig struct {
	Width, Height    int
	CenterX, CenterY float64
	BodyRadius       int
	SatelliteRadius  int
	AltitudeScale    float64
	Background       color.Color
	BodyColor        color.Color
	SatelliteColor   color.Color
	DrawOrbitRing    bool
	OrbitRingColor   color.Color
}

// Renderer draws orbit scenes. It is reusable across frames; each Render
// call produces a fresh image.
type Renderer struct {
	config SceneConfig
}

// NewRenderer creates a renderer, filling in defaults for unset config.
func NewRenderer(config SceneConfig) *Renderer {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.CenterX == 0 {
		config.CenterX = float64(config.Width) / 2
	}
	if config.CenterY == 0 {
		config.CenterY = float64(config.Height) / 2
	}
	if config.BodyRadius == 0 {
		config.BodyRadius = defaultBodyRadius
	}
	if config.SatelliteRadius == 0 {
		config.SatelliteRadius = defaultSatelliteRadius
	}
	if config.AltitudeScale == 0 {
		config.AltitudeScale = defaultAltitudeScale
	}
	if config.Background == nil {
		config.Background = defaultBackground
	}
	if config.BodyColor == nil {
		config.BodyColor = defaultBodyColor
	}
	if config.SatelliteColor == nil {
		config.SatelliteColor = defaultSatelliteColor
	}
	if config.OrbitRingColor == nil {
		config.OrbitRingColor = color.RGBA{64, 64, 64, 255}
	}

	return &Renderer{config: config}
}

// Config returns the effective scene configuration after defaulting.
func (r *Renderer) Config() SceneConfig {
	return r.config
}

// Render draws one frame of the scene for the satellite's current state.
func (r *Renderer) Render(sat *orbit.Satellite) *image.RGBA {
	c := r.config

	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)

	if c.DrawOrbitRing {
		drawCircleOutline(img, c.CenterX, c.CenterY, float64(sat.Altitude)*c.AltitudeScale, c.OrbitRingColor)
	}

	fillCircle(img, c.CenterX, c.CenterY, c.BodyRadius, c.BodyColor)

	x, y := sat.Position(c.CenterX, c.CenterY, c.AltitudeScale)
	fillCircle(img, x, y, c.SatelliteRadius, c.SatelliteColor)

	return img
}

// fillCircle rasterizes a filled circle by scanning the bounding square and
// keeping points within the radius.
func fillCircle(img *image.RGBA, cx, cy float64, radius int, c color.Color) {
	diameter := radius * 2
	for w := 0; w < diameter; w++ {
		for h := 0; h < diameter; h++ {
			dx := radius - w
			dy := radius - h
			if dx*dx+dy*dy <= radius*radius {
				img.Set(int(cx)+dx, int(cy)+dy, c)
			}
		}
	}
}

// drawCircleOutline plots a one-pixel ring using the midpoint circle walk.
func drawCircleOutline(img *image.RGBA, cx, cy, radius float64, c color.Color) {
	if radius <= 0 {
		return
	}

	x, y := int(radius), 0
	err := 1 - x
	icx, icy := int(cx), int(cy)

	for x >= y {
		img.Set(icx+x, icy+y, c)
		img.Set(icx+y, icy+x, c)
		img.Set(icx-y, icy+x, c)
		img.Set(icx-x, icy+y, c)
		img.Set(icx-x, icy-y, c)
		img.Set(icx-y, icy-x, c)
		img.Set(icx+y, icy-x, c)
		img.Set(icx+x, icy-y, c)

		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}
