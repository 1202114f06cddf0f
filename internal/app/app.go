package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

//go:generate mockgen -destination=./app_mock.go -package=app -source=app.go

// Dependency is a long-running part of the service the App starts and stops.
type Dependency interface {
	// Start readies the dependency. It must not block.
	Start() error
	// Stop releases everything Start acquired.
	Stop() error
	// Name is used for logging only.
	Name() string
}

type App struct {
	serviceName string
	// deps start in order and stop in reverse order.
	deps []Dependency
	// started counts the deps whose Start succeeded. Only those are stopped.
	started int
	// depFailChan receives a start failure or panic from any dependency.
	depFailChan chan error
	// osSignalChan receives SIGINT and SIGTERM.
	osSignalChan chan os.Signal
	stopCalled   *atomic.Bool
	runCalled    *atomic.Bool
	// stopTimeout bounds how long stop waits for the dependencies.
	stopTimeout time.Duration
}

type Config struct {
	ServiceName string
	StopTimeout time.Duration
}

func (c *Config) validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, errors.New("service name is required"))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, errors.New("stop timeout is required"))
	}
	return errors.Join(errs...)
}

// CreateApp creates a new application with the provided dependencies.
func CreateApp(cfg *Config, deps ...Dependency) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &App{
		serviceName:  cfg.ServiceName,
		deps:         deps,
		stopTimeout:  cfg.StopTimeout,
		stopCalled:   &atomic.Bool{},
		runCalled:    &atomic.Bool{},
		depFailChan:  make(chan error, len(deps)),
		osSignalChan: make(chan os.Signal, 1),
	}, nil
}

// Run starts every dependency and blocks until ctx is cancelled, a signal arrives or a
// dependency fails to start. The dependencies are then stopped.
func (a *App) Run(ctx context.Context) error {
	if !a.runCalled.CompareAndSwap(false, true) {
		return errors.New("run has already been called")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info().Str("service", a.serviceName).Int("dependencies", len(a.deps)).Msg("starting")
	for _, dep := range a.deps {
		if err := a.start(dep); err != nil {
			a.depFailChan <- err
			break
		}
		a.started++
	}

	signal.Notify(a.osSignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(a.osSignalChan)

	var runErr error
	select {
	case <-runCtx.Done():
		log.Info().Msg("App Context cancelled: shutting down")
	case runErr = <-a.depFailChan:
		log.Error().Err(runErr).Msg("Dependency failed to start")
	case sig := <-a.osSignalChan:
		log.Info().Msg("OS Signal received: " + sig.String() + " shutdown beginning...")
	}

	if err := a.stop(); err != nil {
		log.Error().Err(err).Msg("Error stopping application")
		return errors.Join(runErr, err)
	}
	return runErr
}

func (a *App) start(dep Dependency) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in Start() for dependency %s: %v", dep.Name(), r)
		}
	}()

	log.Info().Msg("Starting dependency: " + dep.Name())
	if err := dep.Start(); err != nil {
		return fmt.Errorf("failure in Start() for dependency %s: %w", dep.Name(), err)
	}
	return nil
}

// stop stops the dependencies in reverse start order and waits at most stopTimeout.
func (a *App) stop() error {
	if !a.stopCalled.CompareAndSwap(false, true) {
		return errors.New("stop has already been called")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.stopTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var errs []error
		for i := a.started - 1; i >= 0; i-- {
			dep := a.deps[i]
			log.Info().Msg("Stopping dependency: " + dep.Name())
			if err := dep.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failure in Stop() for dependency %s: %w", dep.Name(), err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("stopping %s: %w", a.serviceName, ctx.Err())
	}
}
