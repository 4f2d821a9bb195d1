// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config reads partition-layout configuration and exposes the
// nodes declaring concatenation groups as a concat.Source.
//
// The document is a YAML list of partition nodes. A node carries the
// concatenation annotation by declaring a "part-concat" list of
// device references, in the order the partitions are to be declared:
//
//	nodes:
//	  - name: spi-nor-left
//	    part-concat: [flash@0/partition@0, flash@1/partition@0]
//	  - name: spi-nor-right
//	    available: false
//	    part-concat: [flash@0/partition@1, flash@1/partition@1]
//
// Nodes without the annotation are ignored. Whether an annotated node
// actually yields a group (availability, minimum membership) is the
// registry's decision, not this package's.
package config

import (
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"

	"github.com/canonical/partconcat/concat"
)

// ConcatProperty is the annotation key marking a node as a declared
// concatenation group.
const ConcatProperty = "part-concat"

// Document is a parsed partition-layout configuration.
type Document struct {
	nodes []node
}

type node struct {
	name      string
	available bool
	refs      []concat.DeviceID
}

func (n node) Available() bool { return n.available }

func (n node) MemberRefs() ([]concat.DeviceID, error) {
	refs := make([]concat.DeviceID, len(n.refs))
	copy(refs, n.refs)
	return refs, nil
}

var nodeChecker = schema.FieldMap(
	schema.Fields{
		"name":         schema.String(),
		"available":    schema.Bool(),
		ConcatProperty: schema.List(schema.String()),
	},
	schema.Defaults{
		"available":    true,
		ConcatProperty: schema.Omit,
	},
)

// Parse reads a partition-layout document.
func Parse(data []byte) (*Document, error) {
	var raw struct {
		Nodes []map[string]interface{} `yaml:"nodes"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Annotate(err, "parsing partition layout")
	}

	doc := &Document{}
	for i, rawNode := range raw.Nodes {
		coerced, err := nodeChecker.Coerce(rawNode, nil)
		if err != nil {
			return nil, errors.Annotatef(err, "node %d schema check failed", i)
		}
		valid := coerced.(map[string]interface{})

		n := node{
			name:      valid["name"].(string),
			available: valid["available"].(bool),
		}
		if rawRefs, ok := valid[ConcatProperty]; ok {
			seen := set.NewStrings()
			for _, rawRef := range rawRefs.([]interface{}) {
				ref := rawRef.(string)
				if seen.Contains(ref) {
					return nil, errors.NotValidf(
						"node %q: duplicate reference %q", n.name, ref)
				}
				seen.Add(ref)
				n.refs = append(n.refs, concat.DeviceID(ref))
			}
			if n.refs == nil {
				// An empty annotation still marks the node; the
				// registry skips it as undersized.
				n.refs = []concat.DeviceID{}
			}
		}
		doc.nodes = append(doc.nodes, n)
	}
	return doc, nil
}

// Source returns a fresh lazy sequence over the document's annotated
// nodes, in document order.
func (doc *Document) Source() concat.Source {
	annotated := make([]node, 0, len(doc.nodes))
	for _, n := range doc.nodes {
		if n.refs != nil {
			annotated = append(annotated, n)
		}
	}
	return &source{nodes: annotated}
}

type source struct {
	nodes []node
}

// Next is part of the concat.Source interface.
func (s *source) Next() (concat.Node, bool) {
	if len(s.nodes) == 0 {
		return nil, false
	}
	n := s.nodes[0]
	s.nodes = s.nodes[1:]
	return n, true
}
