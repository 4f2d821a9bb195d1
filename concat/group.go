// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat

// group tracks one declared concatenation through its lifetime. The
// expected identifiers are fixed at discovery; members fill in arrival
// order as devices are offered, so the final concatenation order is
// the order the devices registered, not the order they were declared.
type group struct {
	expected []DeviceID
	members  []Device
	joined   Device
}

func newGroup(expected []DeviceID) *group {
	return &group{
		expected: expected,
		members:  make([]Device, 0, len(expected)),
	}
}

// complete reports whether every expected slot has been filled.
func (g *group) complete() bool {
	return len(g.members) == len(g.expected)
}

// expects reports whether id is one of the group's declared members.
func (g *group) expects(id DeviceID) bool {
	for _, want := range g.expected {
		if want == id {
			return true
		}
	}
	return false
}
