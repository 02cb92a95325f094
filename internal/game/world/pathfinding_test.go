package world

import (
	"testing"
)

// mustBuild builds a state from grid rows, failing the test on error.
func mustBuild(t *testing.T, rows ...string) *State {
	t.Helper()
	sf := StageFile{Grid: rows}
	state, err := sf.Build()
	if err != nil {
		t.Fatalf("build stage: %v", err)
	}
	return state
}

func TestBlocked(t *testing.T) {
	s := NewStage(2, 1, 1)
	s.SetZWall(1, 0)

	tests := []struct {
		name   string
		cell   Cell
		dx, dz int
		want   bool
	}{
		{"through wall east", Cell{0, 0}, 1, 0, true},
		{"through wall west", Cell{1, 0}, -1, 0, true},
		{"off the stage", Cell{0, 0}, 0, 1, true},
		{"off the stage west", Cell{0, 0}, -1, 0, true},
		{"diagonal", Cell{0, 0}, 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Blocked(tt.cell, tt.dx, tt.dz); got != tt.want {
				t.Errorf("Blocked(%v, %d, %d) = %v, want %v", tt.cell, tt.dx, tt.dz, got, tt.want)
			}
		})
	}

	open := NewStage(2, 1, 1)
	if open.Blocked(Cell{0, 0}, 1, 0) {
		t.Error("open edge reported blocked")
	}
}

func TestCellAt(t *testing.T) {
	tests := []struct {
		x, z float32
		want Cell
	}{
		{0.5, 0.5, Cell{0, 0}},
		{1, 2.99, Cell{1, 2}},
		{-0.1, 0.2, Cell{-1, 0}},
	}
	for _, tt := range tests {
		if got := CellAt([3]float32{tt.x, 0, tt.z}); got != tt.want {
			t.Errorf("CellAt(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}

func TestFindPath_Simple(t *testing.T) {
	s := mustBuild(t,
		"P....",
		".....",
		".....",
		".....",
		".....",
	)

	path := s.Stage.FindPath(Cell{0, 0}, Cell{4, 4})
	if path == nil {
		t.Fatal("expected path, got nil")
	}
	if path[0] != (Cell{0, 0}) || path[len(path)-1] != (Cell{4, 4}) {
		t.Errorf("path runs %v to %v", path[0], path[len(path)-1])
	}
	if len(path) != 9 {
		t.Errorf("path length %d, want 9", len(path))
	}
	for i := 1; i < len(path); i++ {
		if manhattan(path[i-1], path[i]) != 1 {
			t.Fatalf("non-adjacent step %v -> %v", path[i-1], path[i])
		}
	}
}

func TestFindPath_WithObstacle(t *testing.T) {
	s := mustBuild(t,
		"P.#..",
		"..#..",
		"..#..",
		"..#..",
		".....",
	)

	path := s.Stage.FindPath(Cell{0, 2}, Cell{4, 2})
	if path == nil {
		t.Fatal("expected path around obstacle, got nil")
	}
	for _, c := range path {
		if c.X == 2 && c.Z < 4 {
			t.Errorf("path went through solid cell %v", c)
		}
	}
}

func TestFindPath_NoPath(t *testing.T) {
	s := mustBuild(t,
		"P.#..",
		"..#..",
		"..#..",
	)

	if path := s.Stage.FindPath(Cell{0, 1}, Cell{4, 1}); path != nil {
		t.Errorf("expected no path, got %v", path)
	}
}

func TestFindPath_SameStartGoal(t *testing.T) {
	s := mustBuild(t, "P..")

	path := s.Stage.FindPath(Cell{1, 0}, Cell{1, 0})
	if len(path) != 1 {
		t.Errorf("expected path of one cell, got %v", path)
	}
}

func TestFindPath_OutOfBounds(t *testing.T) {
	s := mustBuild(t, "P..", "...")

	if path := s.Stage.FindPath(Cell{-1, 0}, Cell{2, 1}); path != nil {
		t.Error("expected nil for out of bounds start")
	}
	if path := s.Stage.FindPath(Cell{0, 0}, Cell{10, 10}); path != nil {
		t.Error("expected nil for out of bounds goal")
	}
}
