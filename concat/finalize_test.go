// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package concat_test

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/partconcat/concat"
)

type finalizeSuite struct {
	baseSuite
}

var _ = gc.Suite(&finalizeSuite{})

func (s *finalizeSuite) TestFinalizeJoinsInArrivalOrder(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b", "c"))
	s.discover(c, registry, 1)

	// Declared [a,b,c]; arriving c,a,b must join as [c,a,b].
	devC, devA, devB := newDevice("c"), newDevice("a"), newDevice("b")
	s.offer(c, registry, devC, devA, devB)

	c.Assert(registry.Finalize(), jc.ErrorIsNil)

	s.stub.CheckCalls(c, []testing.StubCall{{
		FuncName: "Build",
		Args: []interface{}{
			"part-c-part-a-+-concat",
			[]concat.Device{devC, devA, devB},
		},
	}, {
		FuncName: "Register",
		Args: []interface{}{
			s.engine.built[0], "bus-c", concat.PublishFlags(0),
		},
	}})
}

func (s *finalizeSuite) TestFinalizeTwoMemberName(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b"))
	s.discover(c, registry, 1)
	devA, devB := newDevice("a"), newDevice("b")
	s.offer(c, registry, devA, devB)

	c.Assert(registry.Finalize(), jc.ErrorIsNil)
	s.stub.CheckCall(c, 0, "Build", "part-a-part-b-concat",
		[]concat.Device{devA, devB})
}

func (s *finalizeSuite) TestFinalizeSkipsIncompleteGroups(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b"))
	s.discover(c, registry, 1)
	s.offer(c, registry, newDevice("a"))

	c.Assert(registry.Finalize(), jc.ErrorIsNil)
	s.stub.CheckCalls(c, nil)
}

func (s *finalizeSuite) TestFinalizeOnlyJoinsOnce(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b"))
	s.discover(c, registry, 1)
	s.offer(c, registry, newDevice("a"), newDevice("b"))

	c.Assert(registry.Finalize(), jc.ErrorIsNil)
	c.Assert(registry.Finalize(), jc.ErrorIsNil)
	s.stub.CheckCallNames(c, "Build", "Register")
}

func (s *finalizeSuite) TestFinalizeMixedCompletion(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b"), newNode("c", "d"))
	s.discover(c, registry, 2)
	devC, devD := newDevice("c"), newDevice("d")
	s.offer(c, registry, devC, devD)

	// Only the second group completed; the first stays unjoined
	// without blocking it.
	c.Assert(registry.Finalize(), jc.ErrorIsNil)
	s.stub.CheckCallNames(c, "Build", "Register")
	s.stub.CheckCall(c, 0, "Build", "part-c-part-d-concat",
		[]concat.Device{devC, devD})
}

func (s *finalizeSuite) TestFinalizeBuildFailureReleasesMembers(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b"))
	s.discover(c, registry, 1)
	devA, devB := newDevice("a"), newDevice("b")
	s.offer(c, registry, devA, devB)

	s.stub.SetErrors(errors.New("engine refused"))
	err := registry.Finalize()
	c.Check(err, jc.ErrorIs, concat.ErrBuildFailed)
	c.Check(err, gc.ErrorMatches, `joining "part-a-part-b-concat": engine refused`)

	c.Check(s.releaser.released, gc.DeepEquals, []concat.Device{devA, devB})
	// The handles went back to the environment; the group reverts to
	// unfilled and awaits fresh arrivals.
	c.Check(registry.PendingIdentifiers(), gc.DeepEquals, []string{"a", "b"})
}

func (s *finalizeSuite) TestFinalizePublishFailureDestroysDevice(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b"))
	s.discover(c, registry, 1)
	devA, devB := newDevice("a"), newDevice("b")
	s.offer(c, registry, devA, devB)

	s.stub.SetErrors(nil, errors.New("name taken"))
	err := registry.Finalize()
	c.Check(err, jc.ErrorIs, concat.ErrPublishFailed)
	c.Check(err, gc.ErrorMatches, `registering "part-a-part-b-concat": name taken`)

	s.stub.CheckCallNames(c, "Build", "Register", "Destroy", "Release", "Release")
	s.stub.CheckCall(c, 2, "Destroy", s.engine.built[0])
	c.Check(s.releaser.released, gc.DeepEquals, []concat.Device{devA, devB})
}

func (s *finalizeSuite) TestFinalizeAllOrNothing(c *gc.C) {
	registry := s.newRegistry(c, newNode("a", "b"), newNode("c", "d"))
	s.discover(c, registry, 2)
	devA, devB := newDevice("a"), newDevice("b")
	devC, devD := newDevice("c"), newDevice("d")
	s.offer(c, registry, devA, devB, devC, devD)

	// First group joins and registers; the second group's build
	// fails, which must also unwind the first.
	s.stub.SetErrors(nil, nil, errors.New("engine refused"))
	err := registry.Finalize()
	c.Check(err, jc.ErrorIs, concat.ErrBuildFailed)

	// First the failing group's members go back, then the first
	// group's device is unwound and its members returned.
	s.stub.CheckCallNames(c,
		"Build", "Register",
		"Build",
		"Release", "Release",
		"Unregister", "Destroy",
		"Release", "Release",
	)
	s.stub.CheckCall(c, 5, "Unregister", s.engine.built[0])
	c.Check(s.releaser.released, gc.DeepEquals,
		[]concat.Device{devC, devD, devA, devB})

	// The environment re-offers the returned handles and, with the
	// engine healthy again, a fresh pass succeeds.
	s.stub.ResetCalls()
	s.offer(c, registry, devA, devB, devC, devD)
	c.Assert(registry.Finalize(), jc.ErrorIsNil)
	s.stub.CheckCallNames(c, "Build", "Register", "Build", "Register")
}
