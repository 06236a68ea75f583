package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/akulov/orbitsim/internal/orbit"
	"github.com/akulov/orbitsim/internal/render"
	"github.com/akulov/orbitsim/internal/storage"
	"github.com/akulov/orbitsim/internal/telemetry"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, sessionID, err := createSession(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	if err = os.MkdirAll(config.Output.Directory, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	renderer := render.NewRenderer(render.SceneConfig{
		Width:           config.Scene.Width,
		Height:          config.Scene.Height,
		CenterX:         config.Scene.CenterX,
		CenterY:         config.Scene.CenterY,
		BodyRadius:      config.Scene.BodyRadius,
		SatelliteRadius: config.Scene.SatelliteRadius,
		AltitudeScale:   config.Scene.AltitudeScale,
		DrawOrbitRing:   config.Scene.OrbitRing,
	})

	var annotator *render.Annotator
	if config.Scene.FontPath != "" {
		if annotator, err = render.NewAnnotator(config.Scene.FontPath); err != nil {
			return fmt.Errorf("creating annotator: %w", err)
		}
	}

	poller, conn, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
	}

	loop := &simLoop{
		config:    config,
		logger:    logger,
		renderer:  renderer,
		annotator: annotator,
		store:     store,
		sessionID: sessionID,
		poller:    poller,
	}

	return loop.run(ctx)
}

// connect dials the telemetry producer. An exhausted retry budget is not
// fatal: the visualizer runs in degraded mode on default parameters.
func connect(ctx context.Context, config *Config, logger *slog.Logger) (*telemetry.Poller, *telemetry.Conn, error) {
	dialer := telemetry.NewDialer(
		telemetry.WithMaxAttempts(config.Telemetry.ConnectAttempts),
		telemetry.WithRetryInterval(time.Duration(config.Telemetry.RetryInterval)),
		telemetry.WithLogger(logger),
	)

	conn, err := dialer.Connect(ctx, config.Telemetry.SocketPath)
	switch {
	case errors.Is(err, telemetry.ErrExhausted):
		logger.Warn("telemetry producer unreachable, running on default parameters",
			slog.String("path", config.Telemetry.SocketPath))
		return nil, nil, nil

	case err != nil:
		return nil, nil, fmt.Errorf("failed to connect to telemetry producer: %w", err)
	}

	poller := telemetry.NewPoller(conn,
		telemetry.WithPollTimeout(time.Duration(config.Telemetry.PollTimeout)),
		telemetry.WithPollLogger(logger),
	)

	return poller, conn, nil
}

// simLoop drives the per-frame tick: poll telemetry, advance the orbit,
// render and record. Everything runs on the caller's goroutine.
type simLoop struct {
	config    *Config
	logger    *slog.Logger
	renderer  *render.Renderer
	annotator *render.Annotator
	store     storage.Store
	sessionID int64
	poller    *telemetry.Poller
}

func (l *simLoop) run(ctx context.Context) error {
	state := telemetry.State(l.config.Telemetry.Defaults)
	if !state.Valid() {
		state = telemetry.DefaultState()
	}

	sat := orbit.NewSatellite(state.Altitude())

	interval := time.Duration(l.config.Output.FrameInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("starting render loop",
		slog.Duration("frameInterval", interval),
		slog.String("outputDir", l.config.Output.Directory))

	for tick := int64(0); ; tick++ {
		select {
		case <-ctx.Done():
			l.logger.Info("render loop stopped", slog.Int64("frames", tick))
			return nil
		case <-ticker.C:
		}

		state = l.pollTelemetry(ctx, tick, state)
		sat.Advance(state)

		if err := l.renderFrame(tick, sat, state); err != nil {
			return err
		}

		if limit := l.config.Output.FrameLimit; limit > 0 && tick+1 >= int64(limit) {
			l.logger.Info("frame limit reached", slog.Int("limit", limit))
			return nil
		}
	}
}

// pollTelemetry fetches at most one telemetry frame and records it when it
// differs from the current state. Telemetry failure never stops the loop.
func (l *simLoop) pollTelemetry(ctx context.Context, tick int64, prev telemetry.State) telemetry.State {
	if l.poller == nil {
		return prev
	}

	state, err := l.poller.Poll(prev)
	switch {
	case errors.Is(err, telemetry.ErrPeerClosed):
		l.logger.Warn("telemetry producer closed the connection, keeping last-known parameters")
		l.poller = nil
		return prev

	case err != nil:
		// Recoverable: no update this frame.
		l.logger.Warn("telemetry poll failed", slog.String("error", err.Error()))
		return prev
	}

	if l.store != nil && !state.Equal(prev) {
		l.recordFrame(ctx, tick, state)
	}

	return state
}

func (l *simLoop) recordFrame(ctx context.Context, tick int64, state telemetry.State) {
	rec := storage.FrameRecord{
		Tick:      tick,
		Timestamp: time.Now(),
		Speed:     state.AngularStep(),
		Altitude:  state.Altitude(),
		Raw:       fmt.Sprintf("%d,%d", state.AngularStep(), state.Altitude()),
	}

	if _, err := l.store.StoreFrame(ctx, l.sessionID, &rec); err != nil {
		l.logger.Error("failed to record telemetry frame", slog.String("error", err.Error()))
	}
}

func (l *simLoop) renderFrame(tick int64, sat *orbit.Satellite, state telemetry.State) error {
	img := l.renderer.Render(sat)

	if l.annotator != nil {
		if err := l.annotator.Annotate(img, sat, state.AngularStep()); err != nil {
			l.logger.Warn("failed to annotate frame", slog.String("error", err.Error()))
		}
	}

	name := filepath.Join(l.config.Output.Directory, fmt.Sprintf("frame_%06d.%s", tick, l.config.Output.Format))
	if err := writeImage(name, ImageFormat(l.config.Output.Format), img); err != nil {
		return fmt.Errorf("writing frame %d: %w", tick, err)
	}

	return nil
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

func createSession(ctx context.Context, config *Config) (storage.Store, int64, error) {
	if config.Storage.DataDirectory == "" {
		return nil, 0, nil // recording disabled
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get current working directory: %w", err)
	}

	dbPath := filepath.Join(wd, config.Storage.DataDirectory)

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, 0, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, 0, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("orbit_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	store := storage.NewSqliteStore(dbPath)

	sessionID, err := store.CreateSession(ctx, config.Telemetry.SocketPath, config.Telemetry)
	if err != nil {
		_ = store.Close()
		return nil, 0, fmt.Errorf("creating session: %w", err)
	}

	return store, sessionID, nil
}
