package world

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl32"
)

// Cell is a stage grid coordinate.
type Cell struct {
	X, Z int
}

// CellAt returns the grid cell containing a world position.
func CellAt(p mgl32.Vec3) Cell {
	return Cell{X: floor(p.X()), Z: floor(p.Z())}
}

// Center returns the world position of the cell centre at floor level.
func (c Cell) Center() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X) + 0.5, 0, float32(c.Z) + 0.5}
}

func floor(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}

// InBounds reports whether the cell lies inside the stage.
func (s *Stage) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < s.Width && c.Z >= 0 && c.Z < s.Depth
}

// Blocked reports whether moving one cell from c by (dx, dz) crosses a wall
// or leaves the stage. Only axis-aligned unit steps are meaningful.
func (s *Stage) Blocked(c Cell, dx, dz int) bool {
	next := Cell{c.X + dx, c.Z + dz}
	if !s.InBounds(c) || !s.InBounds(next) {
		return true
	}
	switch {
	case dz == 1:
		return s.XWalls[(c.Z+1)*s.Width+c.X] != nil
	case dz == -1:
		return s.XWalls[c.Z*s.Width+c.X] != nil
	case dx == 1:
		return s.ZWalls[c.Z*(s.Width+1)+c.X+1] != nil
	case dx == -1:
		return s.ZWalls[c.Z*(s.Width+1)+c.X] != nil
	}
	return true
}

// pathNode is a node in the A* search.
type pathNode struct {
	cell   Cell
	g, f   int
	parent *pathNode
	index  int
}

// pathHeap is a priority queue ordered by f score.
type pathHeap []*pathNode

func (h pathHeap) Len() int           { return len(h) }
func (h pathHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h pathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pathHeap) Push(x any) {
	node := x.(*pathNode)
	node.index = len(*h)
	*h = append(*h, node)
}

func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// steps are the four moves between neighbouring cells.
var steps = [4][2]int{{0, 1}, {-1, 0}, {0, -1}, {1, 0}}

// FindPath finds the shortest cell path from start to goal with A*,
// moving between neighbouring cells not separated by a wall.
// The path includes both ends. Returns nil if the goal is unreachable.
func (s *Stage) FindPath(start, goal Cell) []Cell {
	if !s.InBounds(start) || !s.InBounds(goal) {
		return nil
	}

	open := &pathHeap{}
	closed := make(map[Cell]bool)
	nodes := make(map[Cell]*pathNode)

	first := &pathNode{cell: start, f: manhattan(start, goal)}
	heap.Push(open, first)
	nodes[start] = first

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.cell == goal {
			return reconstruct(current)
		}
		closed[current.cell] = true

		for _, d := range steps {
			if s.Blocked(current.cell, d[0], d[1]) {
				continue
			}
			next := Cell{current.cell.X + d[0], current.cell.Z + d[1]}
			if closed[next] {
				continue
			}

			g := current.g + 1
			n, ok := nodes[next]
			if !ok {
				n = &pathNode{cell: next, g: g, f: g + manhattan(next, goal), parent: current}
				nodes[next] = n
				heap.Push(open, n)
			} else if g < n.g {
				n.f += g - n.g
				n.g = g
				n.parent = current
				heap.Fix(open, n.index)
			}
		}
	}
	return nil
}

func manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Z-b.Z)
}

func reconstruct(node *pathNode) []Cell {
	var path []Cell
	for ; node != nil; node = node.parent {
		path = append(path, node.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
