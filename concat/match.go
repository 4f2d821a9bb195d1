// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat

// Offer presents a newly arrived device for matching. If the device's
// identifier is expected by a group that is not yet complete, the
// handle is stored in the group's next free slot and Offer returns
// true: the registry has taken the handle and will release it via the
// configured Releaser. Otherwise Offer returns false and the device
// is left entirely alone.
//
// Groups are scanned in discovery order and the first match wins. A
// complete group accepts no further matches, so a duplicate or late
// arrival cannot grow a group past its declared size.
func (r *Registry) Offer(device Device) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := device.ID()
	for _, g := range r.groups {
		if g.complete() {
			continue
		}
		if g.expects(id) {
			g.members = append(g.members, device)
			logger.Debugf("matched device %q (%d of %d)", device.Name(), len(g.members), len(g.expected))
			return true
		}
	}
	return false
}
