// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat

import "github.com/juju/errors"

const (
	// ErrResolveFailed is raised by Discover when a node's member
	// references cannot be resolved. A failed Discover leaves the
	// registry empty.
	ErrResolveFailed = errors.ConstError("resolving member references")

	// ErrBuildFailed is raised by Finalize when the concatenation
	// engine refuses to build a group's device.
	ErrBuildFailed = errors.ConstError("building concatenated device")

	// ErrPublishFailed is raised by Finalize when a built device
	// cannot be registered.
	ErrPublishFailed = errors.ConstError("publishing concatenated device")
)
