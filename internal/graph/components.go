package graph

// labelComponents assigns component ids by BFS, visiting nodes in input
// order. It returns the number of components.
func (g *Graph) labelComponents() int {
	g.component = make([]int, len(g.names))
	for i := range g.component {
		g.component[i] = -1
	}

	next := 0
	for i := range g.names {
		if g.component[i] >= 0 {
			continue
		}
		g.component[i] = next
		queue := []int{i}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, neighbor := range g.adj[current] {
				if g.component[neighbor] >= 0 {
					continue
				}
				g.component[neighbor] = next
				queue = append(queue, neighbor)
			}
		}
		next++
	}
	return next
}

// checkDegenerate looks for one qualifying pair: a node that does not list
// every other member of its component as a neighbor.
func (g *Graph) checkDegenerate() error {
	size := make(map[int]int)
	for _, c := range g.component {
		size[c]++
	}
	for i, ns := range g.adj {
		c := g.component[i]
		inComponent := 0
		for _, j := range ns {
			if g.component[j] == c {
				inComponent++
			}
		}
		if inComponent < size[c]-1 {
			return nil
		}
	}
	return &DegenerateGraphError{
		Type:       g.Type,
		Nodes:      len(g.names),
		Components: len(size),
	}
}
