package strix

import (
	"fmt"

	"github.com/dominikbraun/graph"
)

// Pipeline is the full configuration of one preset: its blocks plus the
// explicit directed edges between them.
//
// When Connections is empty the pipeline is a legacy linear chain and block i
// flows only to block i+1. When Connections is non-empty, flow follows the
// explicit edges exclusively; no implicit i+1 fallback is added.
type Pipeline struct {
	PresetID    string  `json:"preset_id"`
	Blocks      []Block `json:"blocks"`
	Connections []Edge  `json:"connections,omitempty"`
}

// Clone deep-copies the pipeline so a run can hold an immutable snapshot
// while the preset editor keeps mutating the original.
func (p Pipeline) Clone() Pipeline {
	out := Pipeline{PresetID: p.PresetID}
	if p.Blocks != nil {
		out.Blocks = make([]Block, len(p.Blocks))
		for i, b := range p.Blocks {
			out.Blocks[i] = b.clone()
		}
	}
	if p.Connections != nil {
		out.Connections = make([]Edge, len(p.Connections))
		copy(out.Connections, p.Connections)
	}
	return out
}

// Linear reports whether the pipeline uses the legacy linear fallback.
func (p Pipeline) Linear() bool { return len(p.Connections) == 0 }

// Downstream returns the successor indices of block i, in stable order.
// Legacy linear pipelines flow i -> i+1 while in range; explicit graphs flow
// exactly along the declared edges.
func (p Pipeline) Downstream(i int) []int {
	if p.Linear() {
		if i+1 < len(p.Blocks) {
			return []int{i + 1}
		}
		return nil
	}
	var out []int
	for _, e := range p.Connections {
		if e.From == i {
			out = append(out, e.To)
		}
	}
	return out
}

// Roots returns the entry blocks of the graph: indices with no incoming edge.
// A legacy linear pipeline always starts at block 0.
func (p Pipeline) Roots() []int {
	if len(p.Blocks) == 0 {
		return nil
	}
	if p.Linear() {
		return []int{0}
	}
	incoming := make(map[int]bool, len(p.Connections))
	for _, e := range p.Connections {
		incoming[e.To] = true
	}
	var roots []int
	for i := range p.Blocks {
		if !incoming[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// Validate checks the pipeline for structural integrity: block indices must
// be dense and unique, edges must reference existing blocks, and the edge set
// must be acyclic. A cyclic preset would make a run chase its own tail.
func (p Pipeline) Validate() error {
	seen := make(map[int]bool, len(p.Blocks))
	for pos, b := range p.Blocks {
		if b.Index != pos {
			return fmt.Errorf("block at position %d carries index %d", pos, b.Index)
		}
		if seen[b.Index] {
			return fmt.Errorf("duplicate block index %d", b.Index)
		}
		seen[b.Index] = true
	}

	if p.Linear() {
		return nil
	}

	g := graph.New(graph.IntHash, graph.Directed(), graph.PreventCycles())
	for i := range p.Blocks {
		if err := g.AddVertex(i); err != nil {
			return fmt.Errorf("add block %d: %w", i, err)
		}
	}
	for _, e := range p.Connections {
		if !seen[e.From] || !seen[e.To] {
			return fmt.Errorf("edge %d->%d references a missing block", e.From, e.To)
		}
		if err := g.AddEdge(e.From, e.To); err != nil {
			return fmt.Errorf("edge %d->%d: %w", e.From, e.To, err)
		}
	}
	return nil
}

// VisibilityOrdinal returns the running count of overlay-visible blocks seen
// up to and including index i, in index order. The ordinal is only used as a
// color hint for display surfaces.
func (p Pipeline) VisibilityOrdinal(i int) int {
	n := 0
	for idx := 0; idx <= i && idx < len(p.Blocks); idx++ {
		if p.Blocks[idx].ShowOverlay {
			n++
		}
	}
	return n
}
