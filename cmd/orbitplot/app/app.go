package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/akulov/orbitsim/internal/storage"
)

var (
	speedColor    = color.RGBA{230, 120, 0, 255}
	altitudeColor = color.RGBA{0, 140, 60, 255}
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return plotSession(ctx, store, config, logger)
}

func plotSession(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) error {
	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session %d not found", config.SessionID)
	}

	logger.Info("plotting session",
		slog.Int64("session", session.ID),
		slog.String("socketPath", session.SocketPath),
		slog.Time("startTime", session.StartTime))

	frames, err := store.Frames(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading frames: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("session %d has no recorded frames", config.SessionID)
	}

	speeds := make([]int, len(frames))
	altitudes := make([]int, len(frames))
	for i, f := range frames {
		speeds[i] = f.Speed
		altitudes[i] = f.Altitude
	}

	renderer, err := NewChartRenderer(config.Width, config.Height, config.FontPath)
	if err != nil {
		return fmt.Errorf("creating chart renderer: %w", err)
	}

	logger.Info("rendering chart",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
			slog.Int("frames", len(frames)),
		))

	img, err := renderer.Render([]Series{
		{Label: "speed (km/h)", Color: speedColor, Values: speeds},
		{Label: "altitude (km)", Color: altitudeColor, Values: altitudes},
	})
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	return writeImage(config.OutputFile, config.Format, img)
}

func writeImage(name string, format ImageFormat, img *image.RGBA) (err error) {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
