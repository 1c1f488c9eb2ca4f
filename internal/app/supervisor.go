package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/five82/kimaideck/internal/deck"
	"github.com/five82/kimaideck/internal/state"
)

const (
	defaultEnumerateEvery = 5 * time.Second
	maxBackoff            = time.Minute
)

// SessionFunc serves one opened device until it fails or ctx ends. logger
// carries the session id.
type SessionFunc func(ctx context.Context, dev deck.Device, logger *slog.Logger) error

// Supervisor keeps a device session running. It waits for a device,
// serves it, and after a failure resets and closes it and starts over.
type Supervisor struct {
	Enumerator deck.Enumerator
	Session    SessionFunc
	Store      *state.Store // optional
	Logger     *slog.Logger
	// Retry is the enumeration interval and the base of the failure
	// backoff; zero uses five seconds.
	Retry time.Duration
	// Healthy is how long a session must run before its failure no longer
	// counts as consecutive; zero uses maxBackoff.
	Healthy time.Duration
}

// Run blocks until ctx ends. Device absence and session failures are
// handled here and never returned.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.Enumerator == nil || s.Session == nil {
		return errors.New("supervisor needs an enumerator and a session")
	}
	logger := s.logger()
	failures := 0

	for {
		dev, err := s.waitForDevice(ctx)
		if err != nil {
			return nil
		}

		log := logger.With("session", uuid.NewString(), "device", dev.Name())
		started := time.Now()
		err = s.serve(ctx, dev, log)
		if ctx.Err() != nil {
			log.Info("device session stopped")
			return nil
		}

		if failures > 0 && time.Since(started) >= s.healthy() {
			log.Info("session ran healthy, resetting failure count", "previous_failures", failures)
			failures = 0
			if s.Store != nil {
				s.Store.SessionEnded(nil)
			}
		}
		failures++
		log.Error("device session failed", "error", err, "consecutive_failures", failures)
		if s.Store != nil {
			s.Store.SessionEnded(err)
		}

		wait := calculateBackoff(failures-1, s.retry())
		log.Info("restarting device discovery", "in", wait)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// serve opens dev, runs the session and always resets and closes the
// device afterwards. Reset and close errors are logged only.
func (s *Supervisor) serve(ctx context.Context, dev deck.Device, log *slog.Logger) error {
	if err := dev.Open(); err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	log.Info("device opened", "rows", dev.Rows(), "cols", dev.Cols())

	err := s.Session(ctx, dev, log)
	if err == nil && ctx.Err() == nil {
		err = errors.New("session ended unexpectedly")
	}

	if rerr := dev.Reset(); rerr != nil {
		log.Debug("reset after session failed", "error", rerr)
	}
	if cerr := dev.Close(); cerr != nil {
		log.Debug("close after session failed", "error", cerr)
	}
	return err
}

// waitForDevice polls the enumerator until a device shows up and returns
// the first one. It only fails when ctx ends.
func (s *Supervisor) waitForDevice(ctx context.Context) (deck.Device, error) {
	logger := s.logger()
	ticker := time.NewTicker(s.retry())
	defer ticker.Stop()

	announced := false
	for {
		devices, err := s.Enumerator.Enumerate(ctx)
		switch {
		case err == nil && len(devices) > 0:
			return devices[0], nil
		case err != nil && !errors.Is(err, deck.ErrNoDevice):
			logger.Warn("device enumeration failed", "error", err)
		case !announced:
			logger.Info("waiting for device", "poll_every", s.retry())
			announced = true
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) retry() time.Duration {
	if s.Retry > 0 {
		return s.Retry
	}
	return defaultEnumerateEvery
}

func (s *Supervisor) healthy() time.Duration {
	if s.Healthy > 0 {
		return s.Healthy
	}
	return maxBackoff
}

func (s *Supervisor) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// calculateBackoff doubles base for every failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
