package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/five82/kimaideck/internal/config"
	"github.com/five82/kimaideck/internal/deck"
	"github.com/five82/kimaideck/internal/deck/evdeck"
	"github.com/five82/kimaideck/internal/deck/termdeck"
	"github.com/five82/kimaideck/internal/kimai"
	"github.com/five82/kimaideck/internal/manager"
	"github.com/five82/kimaideck/internal/page"
	"github.com/five82/kimaideck/internal/preview"
	"github.com/five82/kimaideck/internal/state"
)

// Options configure the kimaideck application. Non-empty fields override
// the configuration file.
type Options struct {
	ConfigPath string
	Driver     string
	LogLevel   string
	LogFile    string
	Preview    string
}

func (o Options) apply(cfg *config.Config) {
	if o.Driver != "" {
		cfg.Device.Driver = o.Driver
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}
	if o.Preview != "" {
		cfg.Preview.Listen = o.Preview
	}
}

// Run serves the deck until ctx is cancelled or, with the terminal driver,
// the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log, cfg.Device.Driver)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	store := &state.Store{}
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var term *termdeck.Device
	if cfg.Device.Driver == config.DriverTerminal {
		term, err = termdeck.New(cfg.Device.Rows, cfg.Device.Cols, store)
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer stop()
			return termdeck.Run(ctx, termdeck.Options{
				Device:  term,
				Store:   store,
				LogPath: logFilePath(cfg.Log, cfg.Device.Driver),
				OnQuit:  stop,
			})
		})
	}

	if cfg.Preview.Listen != "" {
		srv := preview.New(store, logger.With("component", "preview"))
		g.Go(func() error {
			return srv.Run(ctx, cfg.Preview.Listen)
		})
	}

	reloads := make(chan config.Config, 1)
	if watcher, err := newConfigWatcher(cfg.Path, logger, func(next config.Config) {
		opts.apply(&next)
		offerLatest(reloads, next)
	}); err != nil {
		logger.Warn("configuration changes will not be picked up", "error", err)
	} else {
		g.Go(func() error { return watcher.Run(ctx) })
	}

	g.Go(func() error {
		return serveSessions(ctx, cfg, store, logger, term, reloads)
	})

	logger.Info("kimaideck started", "driver", cfg.Device.Driver, "grid", fmt.Sprintf("%dx%d", cfg.Device.Rows, cfg.Device.Cols))
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("kimaideck stopped")
	return err
}

// offerLatest replaces any pending reload with next.
func offerLatest(ch chan config.Config, next config.Config) {
	for {
		select {
		case ch <- next:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// serveSessions runs a supervisor for cfg and restarts it with the new
// settings whenever the configuration is reloaded. A reload that cannot
// build a supervisor is logged and the running session is kept.
func serveSessions(ctx context.Context, cfg config.Config, store *state.Store, logger *slog.Logger, term *termdeck.Device, reloads <-chan config.Config) error {
	sup, err := newSupervisor(cfg, store, logger, term)
	if err != nil {
		return err
	}

	for {
		sessCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- sup.Run(sessCtx) }()

	wait:
		for {
			select {
			case err := <-done:
				cancel()
				return err
			case next := <-reloads:
				next = keepFixed(cfg, next, logger)
				nextSup, err := newSupervisor(next, store, logger, term)
				if err != nil {
					logger.Warn("ignoring configuration reload", "error", err)
					continue
				}
				cancel()
				<-done
				cfg, sup = next, nextSup
				logger.Info("restarting device session with new configuration")
				break wait
			}
		}
	}
}

// keepFixed carries over the settings that cannot change while running.
func keepFixed(cur, next config.Config, logger *slog.Logger) config.Config {
	if next.Device.Driver != cur.Device.Driver {
		logger.Warn("device.driver changes need a restart", "current", cur.Device.Driver)
		next.Device.Driver = cur.Device.Driver
	}
	if cur.Device.Driver == config.DriverTerminal &&
		(next.Device.Rows != cur.Device.Rows || next.Device.Cols != cur.Device.Cols) {
		logger.Warn("terminal grid changes need a restart")
		next.Device.Rows, next.Device.Cols = cur.Device.Rows, cur.Device.Cols
	}
	next.Log = cur.Log
	next.Preview = cur.Preview
	return next
}

func newSupervisor(cfg config.Config, store *state.Store, logger *slog.Logger, term *termdeck.Device) (*Supervisor, error) {
	loc, err := cfg.Display.Location()
	if err != nil {
		return nil, err
	}
	client, err := kimai.NewClient(kimai.Options{
		URL:      cfg.Remote.URL,
		User:     cfg.Remote.User,
		Token:    cfg.Remote.Token,
		Location: loc,
	})
	if err != nil {
		return nil, fmt.Errorf("init kimai client: %w", err)
	}

	var enum deck.Enumerator
	switch cfg.Device.Driver {
	case config.DriverTerminal:
		enum = termdeck.Enumerator{Device: term}
	case config.DriverEvdev:
		enum = evdeck.Enumerator{Options: evdeck.Options{
			Name:     cfg.Device.Name,
			Rows:     cfg.Device.Rows,
			Cols:     cfg.Device.Cols,
			KeyCodes: cfg.Device.KeyCodes,
			Store:    store,
			Logger:   logger,
		}}
	default:
		return nil, fmt.Errorf("unknown device driver %q", cfg.Device.Driver)
	}

	return &Supervisor{
		Enumerator: enum,
		Store:      store,
		Logger:     logger,
		Session: func(ctx context.Context, dev deck.Device, log *slog.Logger) error {
			m, err := manager.New(manager.Options{
				Device: dev,
				Deps:   page.Deps{API: client, Location: loc},
				Store:  store,
				Logger: log,
			})
			if err != nil {
				return err
			}
			return m.Run(ctx)
		},
	}, nil
}
