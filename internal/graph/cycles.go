package graph

// SimpleCycles returns every simple cycle as the sequence of nodes it visits.
// Each cycle is reported once, starting from its lowest-index node; the
// closing edge back to the first node is implied. Self-loops are cycles of
// length one. Parallel edges do not produce duplicate cycles.
//
// The search backtracks from every start node through nodes with a higher
// index only, so the output order is fully determined by insertion order.
func (g *Graph) SimpleCycles() [][]*Node {
	var cycles [][]*Node

	for _, start := range g.nodes {
		path := []*Node{start}
		onPath := map[*Node]bool{start: true}

		var visit func(n *Node)
		visit = func(n *Node) {
			for _, next := range g.Successors(n) {
				switch {
				case next == start:
					cycle := make([]*Node, len(path))
					copy(cycle, path)
					cycles = append(cycles, cycle)
				case next.index > start.index && !onPath[next]:
					onPath[next] = true
					path = append(path, next)
					visit(next)
					path = path[:len(path)-1]
					delete(onPath, next)
				}
			}
		}
		visit(start)
	}
	return cycles
}

// CycleEdges returns the edges that close each consecutive pair of a cycle
// returned by SimpleCycles, including every parallel edge.
func (g *Graph) CycleEdges(cycle []*Node) []*Edge {
	var out []*Edge
	for i, u := range cycle {
		v := cycle[(i+1)%len(cycle)]
		out = append(out, g.EdgesBetween(u, v)...)
	}
	return out
}
