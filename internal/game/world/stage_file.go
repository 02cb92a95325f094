package world

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Grid symbols understood by the stage file.
const (
	CellSolid  = '#'
	CellOpen   = '.'
	CellPlayer = 'P'
	CellDemon  = 'D'
	CellLight  = 'L'
	CellItem   = 'I'
)

// StageFile is the on-disk description of a stage.
//
// Example:
//
//	wall_height: 1.2
//	light_brightness: 1.5
//	textures:
//	  wall: bricks.png
//	grid:
//	  - "#####"
//	  - "#P.L#"
//	  - "#..D#"
//	  - "#####"
type StageFile struct {
	Name            string   `yaml:"name"`
	WallHeight      float32  `yaml:"wall_height"`
	LightBrightness float32  `yaml:"light_brightness"`
	PlayerYaw       float32  `yaml:"player_yaw"`
	Textures        Skin     `yaml:"textures"`
	Grid            []string `yaml:"grid"`
}

// LoadStageFile reads and builds a stage description from a YAML file.
func LoadStageFile(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf StageFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing stage %s: %w", path, err)
	}
	state, err := sf.Build()
	if err != nil {
		return nil, fmt.Errorf("building stage %s: %w", path, err)
	}

	// Texture paths are relative to the stage file.
	dir := filepath.Dir(path)
	for _, p := range []*string{&state.Skin.Wall, &state.Skin.Floor, &state.Skin.Ceiling, &state.Skin.Demon} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return state, nil
}

// Build converts the grid into walls, objects and lights.
// Cells outside the grid count as solid, so the border is always closed.
func (sf *StageFile) Build() (*State, error) {
	depth := len(sf.Grid)
	if depth == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	width := len(sf.Grid[0])
	for i, row := range sf.Grid {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), width)
		}
	}

	height := sf.WallHeight
	if height <= 0 {
		height = 1
	}
	brightness := sf.LightBrightness
	if brightness <= 0 {
		brightness = 1
	}

	solid := func(x, z int) bool {
		if x < 0 || x >= width || z < 0 || z >= depth {
			return true
		}
		return sf.Grid[z][x] == CellSolid
	}

	stage := NewStage(width, depth, height)
	state := &State{Stage: stage, Skin: sf.Textures}
	playerFound := false

	for z := 0; z <= depth; z++ {
		for x := 0; x <= width; x++ {
			if x < width && solid(x, z-1) != solid(x, z) {
				stage.SetXWall(x, z)
			}
			if z < depth && solid(x-1, z) != solid(x, z) {
				stage.SetZWall(x, z)
			}
		}
	}

	for z, row := range sf.Grid {
		for x, c := range row {
			center := mgl32.Vec3{float32(x) + 0.5, 0, float32(z) + 0.5}
			switch c {
			case CellSolid, CellOpen:
			case CellPlayer:
				state.Player = Player{Position: center, Yaw: sf.PlayerYaw}
				playerFound = true
			case CellDemon:
				state.Objects = append(state.Objects, &Demon{
					Position: center,
					Width:    0.8,
					Height:   height * 0.9,
				})
			case CellLight:
				state.Lights = append(state.Lights, Light{
					Position:   mgl32.Vec3{center.X(), height * 0.8, center.Z()},
					Brightness: brightness,
				})
			case CellItem:
				state.Objects = append(state.Objects, &Item{Position: center, Name: "item"})
			default:
				return nil, fmt.Errorf("unknown cell %q at (%d, %d)", c, x, z)
			}
		}
	}

	if !playerFound {
		return nil, fmt.Errorf("grid has no player start %q", CellPlayer)
	}
	return state, nil
}

// Demo returns the built-in stage used when no stage file is configured.
func Demo() *State {
	sf := StageFile{
		Name:            "demo",
		WallHeight:      1.2,
		LightBrightness: 1.2,
		PlayerYaw:       math.Pi,
		Grid: []string{
			"#########",
			"#P..#..L#",
			"#.#.#.#.#",
			"#.#...#.#",
			"#L###.#.#",
			"#...#..D#",
			"#.#.#.#.#",
			"#..L..I.#",
			"#########",
		},
	}
	state, err := sf.Build()
	if err != nil {
		panic(fmt.Sprintf("demo stage: %v", err))
	}
	return state
}
