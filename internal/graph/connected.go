package graph

import "slices"

// ConnectedGuessedUnits returns the guessed units reachable from start or end
// by stepping only through guessed units. start and end seed the fill but are
// never part of the result. The result is ordered by node order.
func (g *Graph) ConnectedGuessedUnits(start, end string, guessed GuessedSet) ([]string, error) {
	s, e, mask, err := g.prepare(start, end, guessed)
	if err != nil {
		return nil, err
	}

	visited := make([]bool, len(g.names))
	visited[s] = true
	visited[e] = true
	queue := []int{e, s}
	var found []int
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range g.adj[current] {
			if visited[neighbor] || !mask[neighbor] {
				continue
			}
			visited[neighbor] = true
			found = append(found, neighbor)
			queue = append(queue, neighbor)
		}
	}

	slices.Sort(found)
	out := make([]string, len(found))
	for i, idx := range found {
		out[i] = g.names[idx]
	}
	return out, nil
}
