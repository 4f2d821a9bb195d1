// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package concat assembles declared groups of partition devices into
// single logical devices.
//
// Groups are declared in platform configuration as ordered lists of
// opaque device identifiers. The devices themselves register with the
// host asynchronously and in no particular order, so the registry is
// populated up front with the expected identifiers (Discover), filled
// one device at a time as they appear (Offer), and the concatenated
// devices are built and published in one late pass once arrivals have
// settled (Finalize). Teardown reverses everything at shutdown.
//
// The concatenation engine, the publication mechanism and the
// configuration source are collaborators supplied by the host; this
// package only decides which devices to join and when.
package concat
