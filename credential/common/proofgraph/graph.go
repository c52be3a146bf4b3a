// Package proofgraph resolves previousProof references between the proofs
// attached to one document.
package proofgraph

import (
	"fmt"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/dto"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/util"
)

// Node is one proof in the graph. Raw is the proof exactly as it appears in
// the document and is what gets embedded when a dependent proof is
// canonicalized.
type Node struct {
	Index int
	Proof dto.Proof
	Raw   jsonmap.JSONMap
}

// Graph indexes a document's proofs by id.
type Graph struct {
	nodes []*Node
	byID  map[string]*Node
}

// New parses raw proofs and builds a graph. Proof ids must be unique.
func New(proofs []jsonmap.JSONMap) (*Graph, error) {
	g := &Graph{
		nodes: make([]*Node, 0, len(proofs)),
		byID:  make(map[string]*Node, len(proofs)),
	}
	for i, raw := range proofs {
		proof, err := util.ParseProof(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proof %d: %w", i, err)
		}
		if err := g.add(&Node{Index: i, Proof: proof, Raw: raw}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// FromProofs builds a graph from typed proofs.
func FromProofs(proofs []dto.Proof) (*Graph, error) {
	g := &Graph{
		nodes: make([]*Node, 0, len(proofs)),
		byID:  make(map[string]*Node, len(proofs)),
	}
	for i, proof := range proofs {
		if err := g.add(&Node{Index: i, Proof: proof, Raw: util.SerializeProof(proof)}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) add(n *Node) error {
	if id := n.Proof.ID; id != "" {
		if _, exists := g.byID[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateProofID, id)
		}
		g.byID[id] = n
	}
	g.nodes = append(g.nodes, n)
	return nil
}

// Nodes returns the proofs in document order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Lookup finds a proof by id.
func (g *Graph) Lookup(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// direct returns the proofs named by ref, in reference order, duplicates kept.
func (g *Graph) direct(ref *dto.PreviousProof) ([]*Node, error) {
	refs := ref.Refs()
	if len(refs) == 0 {
		return nil, nil
	}
	matches := make([]*Node, 0, len(refs))
	for _, r := range refs {
		id, ok := r.(string)
		if !ok {
			return nil, &MissingProofError{Ref: r, NonString: true}
		}
		n, ok := g.byID[id]
		if !ok {
			return nil, &MissingProofError{Ref: id}
		}
		matches = append(matches, n)
	}
	return matches, nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// check walks everything reachable from n, failing on a missing reference
// or on an id that reappears on the current path.
func (g *Graph) check(n *Node, state map[*Node]visitState, path []string) error {
	switch state[n] {
	case visited:
		return nil
	case visiting:
		return &CyclicProofError{Path: cyclePath(path, n.Proof.ID)}
	}

	state[n] = visiting
	path = append(path, n.Proof.ID)
	deps, err := g.direct(n.Proof.PreviousProof)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if err := g.check(dep, state, path); err != nil {
			return err
		}
	}
	state[n] = visited
	return nil
}

func cyclePath(path []string, id string) []string {
	for i, p := range path {
		if p == id {
			out := make([]string, 0, len(path)-i+1)
			out = append(out, path[i:]...)
			return append(out, id)
		}
	}
	return append(append([]string(nil), path...), id)
}

// Resolve returns the proofs directly referenced by ref, in reference order
// with duplicates preserved, after checking that every transitive
// dependency exists and that no cycle is reachable.
func (g *Graph) Resolve(ref *dto.PreviousProof) ([]*Node, error) {
	deps, err := g.direct(ref)
	if err != nil {
		return nil, err
	}
	state := make(map[*Node]visitState)
	for _, dep := range deps {
		if err := g.check(dep, state, nil); err != nil {
			return nil, err
		}
	}
	return deps, nil
}

// Dependencies resolves the previousProof of a proof already in the graph.
// Unlike Resolve it also detects cycles passing through n itself.
func (g *Graph) Dependencies(n *Node) ([]*Node, error) {
	if err := g.check(n, make(map[*Node]visitState), nil); err != nil {
		return nil, err
	}
	return g.direct(n.Proof.PreviousProof)
}

// Closure returns every proof reachable from ref, each once, in the order
// first reached by a depth-first walk.
func (g *Graph) Closure(ref *dto.PreviousProof) ([]*Node, error) {
	if _, err := g.Resolve(ref); err != nil {
		return nil, err
	}

	var out []*Node
	seen := make(map[*Node]bool)
	var walk func(ref *dto.PreviousProof) error
	walk = func(ref *dto.PreviousProof) error {
		deps, err := g.direct(ref)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
			if err := walk(dep.Proof.PreviousProof); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(ref); err != nil {
		return nil, err
	}
	return out, nil
}

// Levels groups the proofs so that every proof's dependencies sit in an
// earlier level. Proofs within a level are independent of each other and
// keep document order.
func (g *Graph) Levels() ([][]*Node, error) {
	state := make(map[*Node]visitState)
	for _, n := range g.nodes {
		if err := g.check(n, state, nil); err != nil {
			return nil, err
		}
	}

	depth := make(map[*Node]int, len(g.nodes))
	var level func(n *Node) int
	level = func(n *Node) int {
		if d, ok := depth[n]; ok {
			return d
		}
		// References were validated above.
		deps, _ := g.direct(n.Proof.PreviousProof)
		d := 0
		for _, dep := range deps {
			if l := level(dep) + 1; l > d {
				d = l
			}
		}
		depth[n] = d
		return d
	}

	var levels [][]*Node
	for _, n := range g.nodes {
		d := level(n)
		for len(levels) <= d {
			levels = append(levels, nil)
		}
		levels[d] = append(levels[d], n)
	}
	return levels, nil
}

// ResolveDependencies returns the proofs in available that ref points to,
// in reference order with duplicates preserved.
func ResolveDependencies(ref *dto.PreviousProof, available []dto.Proof) ([]dto.Proof, error) {
	g, err := FromProofs(available)
	if err != nil {
		return nil, err
	}
	nodes, err := g.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return util.MapSlice(nodes, func(n *Node) dto.Proof { return n.Proof }), nil
}
