// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat

import (
	"github.com/juju/errors"
)

// Discover reads the configuration source and creates a pending group
// for every available node declaring at least two member references.
// It returns the number of groups created. Nodes that are disabled or
// undersized are skipped silently.
//
// Discover runs once per registry: if groups already exist it returns
// (0, nil) without consuming the source again. If any node's
// references fail to resolve, every group created by this call is
// removed before the error is returned, so a failed Discover never
// leaves partial state behind.
func (r *Registry) Discover() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.groups) > 0 {
		return 0, nil
	}

	var added int
	for {
		node, ok := r.config.Source.Next()
		if !ok {
			break
		}
		if !node.Available() {
			continue
		}
		refs, err := node.MemberRefs()
		if err != nil {
			r.groups = nil
			return 0, errors.WithType(
				errors.Annotatef(err, "discovering concatenation groups"),
				ErrResolveFailed,
			)
		}
		if len(refs) < minGroupMembers {
			continue
		}
		expected := make([]DeviceID, len(refs))
		copy(expected, refs)
		r.groups = append(r.groups, newGroup(expected))
		added++
		logger.Debugf("discovered group of %d partitions: %v", len(expected), expected)
	}
	return added, nil
}
