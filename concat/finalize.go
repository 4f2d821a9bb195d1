// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat

import (
	"fmt"

	"github.com/juju/errors"
)

// Finalize builds and publishes a concatenated device for every
// complete group. It is run once, after the host's device discovery
// has settled. Incomplete groups are not an error: they are left
// unjoined for Teardown to sweep up, and any guarantee that every
// declared device eventually appears belongs to the host.
//
// Members are joined in arrival order. The device is named after the
// first two members, with a "-+" marker when further member names are
// elided, and is published under the first member's parent context.
//
// A failed build or publication aborts the pass all-or-nothing: the
// device in flight is destroyed, every device joined earlier in the
// same pass is unregistered and destroyed, and all member handles
// involved are returned to their owners. Groups finalized by an
// earlier successful pass are not touched.
func (r *Registry) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pass []*group
	for _, g := range r.groups {
		if !g.complete() || g.joined != nil {
			continue
		}

		name := joinName(g.members)
		members := make([]Device, len(g.members))
		copy(members, g.members)

		device, err := r.config.Engine.Build(name, members)
		if err != nil {
			r.releaseMembers(g)
			r.rollback(pass)
			return errors.WithType(
				errors.Annotatef(err, "joining %q", name),
				ErrBuildFailed,
			)
		}

		parent := g.members[0].Parent()
		if err := r.config.Publisher.Register(device, parent, 0); err != nil {
			r.config.Engine.Destroy(device)
			r.releaseMembers(g)
			r.rollback(pass)
			return errors.WithType(
				errors.Annotatef(err, "registering %q", name),
				ErrPublishFailed,
			)
		}

		g.joined = device
		pass = append(pass, g)
		logger.Infof("joined %d partitions as %q", len(members), name)
	}
	return nil
}

// rollback reverses the groups joined so far in a failed Finalize
// pass. Callers must hold the registry lock.
func (r *Registry) rollback(pass []*group) {
	for _, g := range pass {
		r.config.Publisher.Unregister(g.joined)
		r.config.Engine.Destroy(g.joined)
		g.joined = nil
		r.releaseMembers(g)
	}
}

// joinName synthesizes the concatenated device's name from its first
// two members.
func joinName(members []Device) string {
	marker := ""
	if len(members) > minGroupMembers {
		marker = "-+"
	}
	return fmt.Sprintf("%s-%s%s-concat", members[0].Name(), members[1].Name(), marker)
}
