// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat

import (
	"sync"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("partconcat.concat")

// minGroupMembers is the smallest membership a declared group may
// have; undersized groups are ignored at discovery. It is also the
// threshold beyond which a synthesized device name gains a marker
// indicating elided member names.
const minGroupMembers = 2

// Config holds the collaborators a Registry needs.
type Config struct {
	// Source yields the annotated configuration nodes.
	Source Source

	// Engine builds and destroys concatenated devices.
	Engine Engine

	// Publisher registers and unregisters concatenated devices.
	Publisher Publisher

	// Releaser takes back member device handles this registry no
	// longer holds.
	Releaser Releaser
}

// Validate returns an error if the config cannot be used.
func (config Config) Validate() error {
	if config.Source == nil {
		return errors.NotValidf("nil Source")
	}
	if config.Engine == nil {
		return errors.NotValidf("nil Engine")
	}
	if config.Publisher == nil {
		return errors.NotValidf("nil Publisher")
	}
	if config.Releaser == nil {
		return errors.NotValidf("nil Releaser")
	}
	return nil
}

// Registry owns the declared concatenation groups for one subsystem
// instance, from discovery through teardown. All operations are
// serialized by an internal mutex; the expected call pattern is still
// phase-ordered (Discover, then Offers, then Finalize, then Teardown),
// the lock just makes overlapping callers safe rather than meaningful.
type Registry struct {
	config Config

	mu     sync.Mutex
	groups []*group
}

// NewRegistry returns an empty registry using the given collaborators.
func NewRegistry(config Config) (*Registry, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Registry{config: config}, nil
}

// PendingIdentifiers returns the sorted identifiers that incomplete
// groups are still waiting on. It is purely diagnostic.
func (r *Registry) PendingIdentifiers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := set.NewStrings()
	for _, g := range r.groups {
		if g.complete() {
			continue
		}
		matched := set.NewStrings()
		for _, member := range g.members {
			matched.Add(string(member.ID()))
		}
		for _, id := range g.expected {
			if !matched.Contains(string(id)) {
				pending.Add(string(id))
			}
		}
	}
	return pending.SortedValues()
}

// Teardown unpublishes and destroys every joined device, returns all
// member handles to their owners and drops the group bookkeeping. It
// is called once at shutdown; further calls are no-ops.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.groups {
		if g.joined != nil {
			logger.Debugf("tearing down %q", g.joined.Name())
			r.config.Publisher.Unregister(g.joined)
			r.config.Engine.Destroy(g.joined)
			g.joined = nil
		}
		r.releaseMembers(g)
	}
	r.groups = nil
}

// releaseMembers returns every member handle the group holds and
// empties the group, reverting it to unfilled. Callers must hold the
// registry lock.
func (r *Registry) releaseMembers(g *group) {
	for _, member := range g.members {
		r.config.Releaser.Release(member)
	}
	g.members = g.members[:0]
}
