// Command orbitfeed serves satellite telemetry over a Unix domain socket.
// It owns the socket path, accepts one visualizer at a time and streams
// comma-separated "speed,altitude" lines at a fixed cadence, either as fixed
// values or as a bounded random walk.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akulov/orbitsim/internal/feed"
)

type config struct {
	socketPath string
	interval   time.Duration
	speed      int
	altitude   int
	wander     bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var c config
	flag.StringVar(&c.socketPath, "socket", "/tmp/data_socket", "Path to the telemetry socket")
	flag.DurationVar(&c.interval, "interval", time.Second, "Delay between telemetry lines")
	flag.IntVar(&c.speed, "speed", 2, "Orbital speed in degrees per tick")
	flag.IntVar(&c.altitude, "altitude", 10, "Orbital altitude in km")
	flag.BoolVar(&c.wander, "wander", false, "Randomly drift the parameters over time")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, &c, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *config, logger *slog.Logger) error {
	srv, err := feed.Listen(c.socketPath, feed.WithLogger(logger))
	if err != nil {
		return err
	}
	defer srv.Close()

	go func() {
		if err := srv.Serve(ctx); err != nil {
			logger.Error(err.Error())
		}
	}()

	speed, altitude := c.speed, c.altitude

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
		}

		if c.wander {
			speed = drift(speed, 1, 1, 15)
			altitude = drift(altitude, 10, 10, 250)
		}

		err := srv.Send(speed, altitude)
		switch {
		case errors.Is(err, feed.ErrNoClient):
			logger.Debug("no visualizer connected, skipping tick")

		case err != nil:
			logger.Warn("failed to send telemetry", slog.String("error", err.Error()))

		default:
			logger.Debug("sent telemetry",
				slog.Int("speed", speed),
				slog.Int("altitude", altitude))
		}
	}
}

// drift nudges v by up to ±step, clamped to [lo, hi].
func drift(v, step, lo, hi int) int {
	v += rand.Intn(2*step+1) - step
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
