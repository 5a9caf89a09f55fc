package graph

import (
	"fmt"
	"strconv"

	"github.com/specialistvlad/arcaneflow/internal/schema"
	"github.com/zeebo/xxh3"
)

// Node is a vertex wrapping one canonical schema state.
type Node struct {
	index int
	state *schema.State
}

// Index is the node's position in insertion order.
func (n *Node) Index() int           { return n.index }
func (n *Node) State() *schema.State { return n.state }
func (n *Node) Set() schema.Set      { return n.state.Set() }

func (n *Node) String() string {
	return fmt.Sprintf("n%d%s", n.index, n.state.Set())
}

// Edge is a transition caused by one signed step.
type Edge struct {
	From       *Node
	To         *Node
	StepID     string
	Signature  schema.Signature
	Structural bool
}

// IsSelfLoop reports whether the step left the schema state unchanged.
func (e *Edge) IsSelfLoop() bool {
	return e.From == e.To
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s --%s--> %s", e.From, e.StepID, e.To)
}

// Graph is the set of schema states and step transitions of one pipeline.
type Graph struct {
	manager *schema.Manager
	nodes   []*Node
	byState map[*schema.State]*Node
	edges   []*Edge
	out     map[*Node][]*Edge
}

// New creates a graph holding only the initial, empty state.
func New() *Graph {
	g := &Graph{
		manager: schema.NewManager(),
		byState: make(map[*schema.State]*Node),
		out:     make(map[*Node][]*Edge),
	}
	g.AddState(schema.NewSet())
	return g
}

// Manager exposes the state manager that canonicalizes this graph's nodes.
func (g *Graph) Manager() *schema.Manager {
	return g.manager
}

// Initial returns the node for the empty schema.
func (g *Graph) Initial() *Node {
	return g.nodes[0]
}

// AddState returns the node for the given column set, creating it on first
// sighting. Value-equal sets always return the same node.
func (g *Graph) AddState(cols schema.Set) *Node {
	st := g.manager.Canonicalize(cols)
	if n, ok := g.byState[st]; ok {
		return n
	}
	n := &Node{index: len(g.nodes), state: st}
	g.nodes = append(g.nodes, n)
	g.byState[st] = n
	return n
}

// AddEdge records a transition. Both nodes must belong to this graph.
// Self-loops and parallel edges are allowed.
func (g *Graph) AddEdge(from, to *Node, stepID string, sig schema.Signature, structural bool) (*Edge, error) {
	if !g.owns(from) {
		return nil, fmt.Errorf("source node not found: %v", from)
	}
	if !g.owns(to) {
		return nil, fmt.Errorf("destination node not found: %v", to)
	}
	e := &Edge{From: from, To: to, StepID: stepID, Signature: sig, Structural: structural}
	g.edges = append(g.edges, e)
	g.out[from] = append(g.out[from], e)
	return e, nil
}

func (g *Graph) owns(n *Node) bool {
	return n != nil && n.index < len(g.nodes) && g.nodes[n.index] == n
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutEdges returns the edges leaving n in insertion order.
func (g *Graph) OutEdges(n *Node) []*Edge {
	src := g.out[n]
	out := make([]*Edge, len(src))
	copy(out, src)
	return out
}

// EdgesBetween returns every parallel edge from u to v.
func (g *Graph) EdgesBetween(u, v *Node) []*Edge {
	var out []*Edge
	for _, e := range g.out[u] {
		if e.To == v {
			out = append(out, e)
		}
	}
	return out
}

// Successors returns the distinct targets of n's out-edges, in the order
// each was first reached.
func (g *Graph) Successors(n *Node) []*Node {
	var out []*Node
	seen := make(map[*Node]struct{})
	for _, e := range g.out[n] {
		if _, ok := seen[e.To]; ok {
			continue
		}
		seen[e.To] = struct{}{}
		out = append(out, e.To)
	}
	return out
}

// Final returns the state reached after the last edge, or the initial node
// when no step declared a signature.
func (g *Graph) Final() *Node {
	if len(g.edges) == 0 {
		return g.Initial()
	}
	return g.edges[len(g.edges)-1].To
}

// Fingerprint hashes the node sets and the edge sequence. Two graphs built
// from the same pipeline have the same fingerprint.
func (g *Graph) Fingerprint() uint64 {
	h := xxh3.New()
	for _, n := range g.nodes {
		_, _ = h.WriteString("n")
		_, _ = h.WriteString(n.Set().Key())
		_, _ = h.WriteString("\x00")
	}
	for _, e := range g.edges {
		_, _ = h.WriteString("e")
		_, _ = h.WriteString(strconv.Itoa(e.From.index))
		_, _ = h.WriteString(">")
		_, _ = h.WriteString(strconv.Itoa(e.To.index))
		_, _ = h.WriteString(":")
		_, _ = h.WriteString(strconv.Itoa(len(e.StepID)))
		_, _ = h.WriteString(e.StepID)
		_, _ = h.WriteString(strconv.FormatUint(e.Signature.Hash(), 16))
		_, _ = h.WriteString("\x00")
	}
	return h.Sum64()
}
