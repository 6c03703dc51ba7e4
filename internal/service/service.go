/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/dapr/kit/concurrency"
	"github.com/dapr/kit/events/batcher"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/diagridio/go-calendar-cron/api"
	"github.com/diagridio/go-calendar-cron/cron"
	"github.com/diagridio/go-calendar-cron/internal/command"
	"github.com/diagridio/go-calendar-cron/internal/config"
)

// NotifyFunc reports a service state to the service manager, in sd_notify
// format.
type NotifyFunc func(state string) (bool, error)

// Options are the options for creating a new scheduler service.
type Options struct {
	Log logr.Logger

	// ConfigPath is the path of the job file. Defaults to config.DefaultPath.
	ConfigPath string

	// Watch restarts the scheduler with the new jobs whenever the job file
	// changes.
	Watch bool

	// Debounce is the quiet period after a change of the job file before it
	// is reloaded. Defaults to 500ms.
	Debounce time.Duration

	// Clock is the clock the scheduler runs on. Defaults to the real clock.
	Clock clock.Clock

	// Notify reports readiness to the service manager. Defaults to systemd
	// notifications, which are no-ops outside of systemd.
	Notify NotifyFunc
}

// Service runs a scheduler for the jobs of a job file.
type Service struct {
	log      logr.Logger
	path     string
	watch    bool
	debounce time.Duration
	clock    clock.Clock
	notifyFn NotifyFunc

	reloads *batcher.Batcher[int, struct{}]
	running atomic.Bool
}

func New(opts Options) *Service {
	path := opts.ConfigPath
	if len(path) == 0 {
		path = config.DefaultPath
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = time.Millisecond * 500
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	notify := opts.Notify
	if notify == nil {
		notify = func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		}
	}

	return &Service{
		log:      opts.Log.WithName("service"),
		path:     path,
		watch:    opts.Watch,
		debounce: debounce,
		clock:    clk,
		notifyFn: notify,
	}
}

// Run loads the job file and runs its jobs until the given context is
// cancelled. The initial job file must be valid. Invalid changes to it while
// running are logged and ignored.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("service already running")
	}
	defer s.running.Store(false)

	cfg, err := config.Load(s.path)
	if err != nil {
		return err
	}

	s.reloads = batcher.New[int, struct{}](s.debounce)
	defer s.reloads.Close()

	runners := []concurrency.Runner{
		func(ctx context.Context) error {
			return s.runScheduler(ctx, cfg)
		},
	}

	if s.watch {
		watcher, err := s.newWatcher()
		if err != nil {
			return err
		}
		runners = append(runners, func(ctx context.Context) error {
			return s.watchConfig(ctx, watcher)
		})
	}

	return concurrency.NewRunnerManager(runners...).Run(ctx)
}

func (s *Service) runScheduler(ctx context.Context, cfg *config.Config) error {
	reloadCh := make(chan struct{})
	s.reloads.Subscribe(ctx, reloadCh)

	defer s.notify(daemon.SdNotifyStopping)

	for {
		next, err := s.runGeneration(ctx, cfg, reloadCh)
		if err != nil || next == nil {
			return err
		}
		cfg = next
	}
}

// runGeneration runs a scheduler for the given jobs until ctx is cancelled,
// returning nil, or until a valid new job file has been loaded, returning
// it.
func (s *Service) runGeneration(ctx context.Context, cfg *config.Config, reloadCh <-chan struct{}) (*config.Config, error) {
	c, err := s.build(cfg)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(genCtx)
	}()

	s.log.Info("Scheduler started", "jobs", len(cfg.Jobs))
	s.notify(daemon.SdNotifyReady)

	for {
		select {
		case <-ctx.Done():
			if errCh == nil {
				return nil, nil
			}
			return nil, <-errCh

		case err := <-errCh:
			if err != nil {
				return nil, err
			}
			s.log.Info("All jobs have stopped, waiting for a configuration change")
			errCh = nil

		case <-reloadCh:
			next, err := config.Load(s.path)
			if err != nil {
				s.log.Error(err, "Ignoring invalid configuration, keeping the current jobs")
				continue
			}

			s.log.Info("Configuration changed, restarting scheduler")
			s.notify(daemon.SdNotifyReloading)

			cancel()
			if errCh != nil {
				if err := <-errCh; err != nil {
					s.log.Error(err, "Scheduler stopped with errors")
				}
			}

			return next, nil
		}
	}
}

func (s *Service) build(cfg *config.Config) (api.Interface, error) {
	c, err := cron.New(cron.Options{
		Log:   s.log,
		Clock: s.clock,
	})
	if err != nil {
		return nil, err
	}

	loader := cron.NewLoader(c)
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]

		sched, err := job.ParsedSchedule()
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", job.Name, err)
		}

		fn := command.New(command.Options{
			Log:     s.log,
			Name:    job.Name,
			Command: job.Command,
			Dir:     job.Dir,
			Env:     job.Env,
			Timeout: job.Timeout,
		})

		if _, err := loader.Add(job.Name, sched, fn); err != nil {
			return nil, fmt.Errorf("job %q: %w", job.Name, err)
		}
	}

	return c, nil
}

func (s *Service) newWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory so that files replaced by rename are still seen.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return watcher, nil
}

func (s *Service) watchConfig(ctx context.Context, watcher *fsnotify.Watcher) error {
	defer watcher.Close()

	file := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("config watcher closed")
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.log.V(1).Info("Config change detected", "op", ev.Op.String())
				s.reloads.Batch(0, struct{}{})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("config watcher closed")
			}
			s.log.Error(err, "Config watcher error")
		}
	}
}

func (s *Service) notify(state string) {
	if _, err := s.notifyFn(state); err != nil {
		s.log.Error(err, "Failed to notify service manager", "state", state)
	}
}
