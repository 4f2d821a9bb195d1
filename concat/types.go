// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat

// DeviceID identifies a partition device declared in platform
// configuration. Values are opaque to this package; two identifiers
// refer to the same device iff they are equal. The configuration
// source must yield one canonical identifier per configuration node.
type DeviceID string

// Device is the view of a partition device needed to match it into a
// group and to construct the concatenated device's identity.
type Device interface {
	// ID returns the identifier the device was declared under in
	// configuration.
	ID() DeviceID

	// Name returns the device's human-readable label.
	Name() string

	// Parent returns a label for the device's owning context, for
	// example the bus or controller it hangs off. The concatenated
	// device is published under the first member's parent.
	Parent() string
}

// Node is one platform configuration node carrying the concatenation
// annotation.
type Node interface {
	// Available reports whether the node is enabled for use.
	Available() bool

	// MemberRefs resolves the node's declared member references, in
	// declaration order.
	MemberRefs() ([]DeviceID, error)
}

// Source yields the configuration nodes that carry the concatenation
// annotation, in configuration order. It is consumed lazily and at
// most once.
type Source interface {
	// Next returns the next annotated node, or false when the
	// configuration is exhausted.
	Next() (Node, bool)
}

// Engine is the external concatenation capability: given an ordered
// set of member devices it produces a single logical device spanning
// them.
type Engine interface {
	// Build constructs a concatenated device from members, which are
	// joined in the order given. It returns an error if the engine
	// cannot produce the device.
	Build(name string, members []Device) (Device, error)

	// Destroy releases a device previously returned by Build.
	Destroy(device Device)
}

// PublishFlags modify device publication. No flags are currently
// defined; the zero value requests default publication.
type PublishFlags uint32

// Publisher makes concatenated devices visible to consumers.
type Publisher interface {
	// Register publishes the device under the given parent context.
	Register(device Device, parent string, flags PublishFlags) error

	// Unregister withdraws a previously registered device.
	Unregister(device Device)
}

// Releaser returns member device handles to the ownership domain that
// supplied them via Offer. Every handle accepted by Offer is released
// exactly once, either when its group is torn down or when building
// its group fails.
type Releaser interface {
	Release(device Device)
}
