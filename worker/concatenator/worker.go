// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package concatenator drives a concat.Registry through its lifecycle:
// discovery at startup, matching as partition devices arrive, one
// finalize pass once arrivals have settled, and teardown when the
// worker is killed.
package concatenator

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/worker/v4"
	"gopkg.in/tomb.v2"

	"github.com/canonical/partconcat/concat"
)

// Logger defines the methods used by the concatenator worker for
// logging.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warningf(string, ...interface{})
}

// Config holds everything the worker needs.
type Config struct {
	// Registry is the group registry the worker owns. The worker
	// tears it down when it stops.
	Registry *concat.Registry

	// Arrivals delivers newly registered partition devices. The
	// channel is owned by the environment; the worker never closes
	// it.
	Arrivals <-chan concat.Device

	// SettleDelay is how long to wait after the last arrival before
	// finalizing. Groups still incomplete when the delay expires are
	// left unjoined.
	SettleDelay time.Duration

	Clock  clock.Clock
	Logger Logger
}

// Validate returns an error if the config cannot be used.
func (config Config) Validate() error {
	if config.Registry == nil {
		return errors.NotValidf("nil Registry")
	}
	if config.Arrivals == nil {
		return errors.NotValidf("nil Arrivals")
	}
	if config.SettleDelay <= 0 {
		return errors.NotValidf("non-positive SettleDelay")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// NewWorker starts the lifecycle driver.
func NewWorker(config Config) (worker.Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &concatenatorWorker{config: config}
	w.tomb.Go(w.loop)
	return w, nil
}

type concatenatorWorker struct {
	tomb   tomb.Tomb
	config Config
}

// Kill is part of the worker.Worker interface.
func (w *concatenatorWorker) Kill() {
	w.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *concatenatorWorker) Wait() error {
	return w.tomb.Wait()
}

func (w *concatenatorWorker) loop() error {
	registry := w.config.Registry
	defer registry.Teardown()

	count, err := registry.Discover()
	if err != nil {
		return errors.Annotate(err, "discovering groups")
	}
	w.config.Logger.Infof("discovered %d concatenation groups", count)

	// The timer marks the end of device probing: it is pushed back by
	// every arrival and cut short when nothing is pending.
	timer := w.config.Clock.NewTimer(w.config.SettleDelay)
	defer timer.Stop()

	finalized := false
	for {
		if !finalized && len(registry.PendingIdentifiers()) == 0 {
			if err := w.finalize(); err != nil {
				return errors.Trace(err)
			}
			finalized = true
		}

		select {
		case <-w.tomb.Dying():
			return tomb.ErrDying

		case device := <-w.config.Arrivals:
			if registry.Offer(device) {
				w.config.Logger.Debugf("matched device %q", device.Name())
			} else {
				w.config.Logger.Debugf("ignoring device %q", device.Name())
			}
			timer.Reset(w.config.SettleDelay)

		case <-timer.Chan():
			if finalized {
				continue
			}
			if pending := registry.PendingIdentifiers(); len(pending) > 0 {
				w.config.Logger.Warningf(
					"finalizing with devices still missing: %v", pending)
			}
			if err := w.finalize(); err != nil {
				return errors.Trace(err)
			}
			finalized = true
		}
	}
}

func (w *concatenatorWorker) finalize() error {
	if err := w.config.Registry.Finalize(); err != nil {
		return errors.Annotate(err, "finalizing groups")
	}
	w.config.Logger.Infof("finalized concatenation groups")
	return nil
}
