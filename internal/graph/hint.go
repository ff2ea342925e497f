package graph

// NoPath is the distance reported when start and end are not connected.
const NoPath = -1

// deque is a double-ended int queue: pushFront items pop in LIFO order ahead
// of everything pushed with pushBack, which pop in FIFO order.
type deque struct {
	front []int
	back  []int
	head  int
}

func (d *deque) pushFront(v int) { d.front = append(d.front, v) }
func (d *deque) pushBack(v int)  { d.back = append(d.back, v) }
func (d *deque) empty() bool     { return len(d.front) == 0 && d.head == len(d.back) }

func (d *deque) pop() int {
	if n := len(d.front); n > 0 {
		v := d.front[n-1]
		d.front = d.front[:n-1]
		return v
	}
	v := d.back[d.head]
	d.head++
	return v
}

// guessSearch is the result of a 0/1-weighted search rooted at end.
type guessSearch struct {
	dist    []int
	parent  []int
	reached bool
}

// searchFromEnd runs a 0/1 BFS from end until start is finalized. Entering a
// guessed node costs 0, any other node costs 1. The endpoints always cost 1
// to enter, whether or not the caller listed them as guessed.
func (g *Graph) searchFromEnd(start, end int, guessed []bool) guessSearch {
	n := len(g.names)
	s := guessSearch{
		dist:   make([]int, n),
		parent: make([]int, n),
	}
	for i := range s.dist {
		s.dist[i] = -1
		s.parent[i] = -1
	}
	done := make([]bool, n)

	s.dist[end] = 0
	s.parent[end] = end
	var dq deque
	dq.pushBack(end)

	for !dq.empty() {
		current := dq.pop()
		if done[current] {
			continue
		}
		done[current] = true
		if current == start {
			s.reached = true
			break
		}
		for _, neighbor := range g.adj[current] {
			if done[neighbor] {
				continue
			}
			weight := 1
			if guessed[neighbor] && neighbor != start && neighbor != end {
				weight = 0
			}
			nd := s.dist[current] + weight
			if s.dist[neighbor] >= 0 && nd >= s.dist[neighbor] {
				continue
			}
			s.dist[neighbor] = nd
			s.parent[neighbor] = current
			if weight == 0 {
				dq.pushFront(neighbor)
			} else {
				dq.pushBack(neighbor)
			}
		}
	}
	return s
}

// prepare resolves the query arguments shared by the guess-aware queries.
func (g *Graph) prepare(start, end string, guessed GuessedSet) (int, int, []bool, error) {
	s, err := g.lookup(start)
	if err != nil {
		return 0, 0, nil, err
	}
	e, err := g.lookup(end)
	if err != nil {
		return 0, 0, nil, err
	}
	mask, err := g.guessedMask(guessed)
	if err != nil {
		return 0, 0, nil, err
	}
	return s, e, mask, nil
}

// NextHint returns the unit the player should reveal next: the first
// unguessed unit on the cheapest guess-aware path, walking from start toward
// end. ok is false when no path exists or every unit on the path is already
// guessed. start == end counts as solved.
func (g *Graph) NextHint(start, end string, guessed GuessedSet) (hint string, ok bool, err error) {
	s, e, mask, err := g.prepare(start, end, guessed)
	if err != nil {
		return "", false, err
	}
	if s == e {
		return "", false, nil
	}

	res := g.searchFromEnd(s, e, mask)
	if !res.reached {
		return "", false, nil
	}
	for current := res.parent[s]; current != e; current = res.parent[current] {
		if !mask[current] {
			return g.names[current], true, nil
		}
	}
	return "", false, nil
}

// DistanceRemaining returns how many more units must be guessed to connect
// start and end, or NoPath when they are in different components.
func (g *Graph) DistanceRemaining(start, end string, guessed GuessedSet) (int, error) {
	s, e, mask, err := g.prepare(start, end, guessed)
	if err != nil {
		return NoPath, err
	}
	if s == e {
		return 0, nil
	}

	res := g.searchFromEnd(s, e, mask)
	if !res.reached {
		return NoPath, nil
	}
	// start itself contributes one to the distance
	return res.dist[s] - 1, nil
}

// Path returns the cheapest guess-aware chain from start to end, both
// included, or nil when no path exists.
func (g *Graph) Path(start, end string, guessed GuessedSet) ([]string, error) {
	s, e, mask, err := g.prepare(start, end, guessed)
	if err != nil {
		return nil, err
	}
	if s == e {
		return []string{start}, nil
	}

	res := g.searchFromEnd(s, e, mask)
	if !res.reached {
		return nil, nil
	}
	path := []string{g.names[s]}
	for current := res.parent[s]; ; current = res.parent[current] {
		path = append(path, g.names[current])
		if current == e {
			break
		}
	}
	return path, nil
}
