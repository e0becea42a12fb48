package dedupe

// DisjointSet is a union-find over the indices 0..n-1 with path
// compression and union by size.
type DisjointSet struct {
	parent []int
	size   []int
}

// NewDisjointSet returns n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	s := &DisjointSet{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range s.parent {
		s.parent[i] = i
		s.size[i] = 1
	}
	return s
}

// Find returns the representative of x's set.
func (s *DisjointSet) Find(x int) int {
	root := x
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for s.parent[x] != root {
		next := s.parent[x]
		s.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets holding a and b. It reports whether they were
// separate.
func (s *DisjointSet) Union(a, b int) bool {
	ra, rb := s.Find(a), s.Find(b)
	if ra == rb {
		return false
	}
	if s.size[ra] < s.size[rb] {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
	s.size[ra] += s.size[rb]
	return true
}

// Connected reports whether a and b are in the same set.
func (s *DisjointSet) Connected(a, b int) bool {
	return s.Find(a) == s.Find(b)
}

// Groups returns every set as ascending indices, ordered by each set's
// lowest index.
func (s *DisjointSet) Groups() [][]int {
	slot := make(map[int]int)
	var groups [][]int
	for i := range s.parent {
		root := s.Find(i)
		g, ok := slot[root]
		if !ok {
			g = len(groups)
			slot[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
