package game

import (
	"math"
	"math/rand/v2"
)

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev distance, used for attack range and proximity counts.
func (c Coord) Chebyshev(o Coord) int {
	return max(abs(c.X-o.X), abs(c.Y-o.Y))
}

func (c Coord) Distance(o Coord) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

type Terrain string

const (
	Grassland Terrain = "grassland"
	Plains    Terrain = "plains"
	Hills     Terrain = "hills"
	Desert    Terrain = "desert"
	Forest    Terrain = "forest"
	Mountains Terrain = "mountains"
	Ocean     Terrain = "ocean"
)

// Tile is a copy of one map cell.
type Tile struct {
	Location    Coord   `json:"location"`
	Terrain     Terrain `json:"type"`
	City        bool    `json:"city"`
	Improvement string  `json:"improvement,omitempty"`
	Explored    bool    `json:"explored"`
}

// Improvements returns the improvements a worker could build on the terrain.
func (t Terrain) Improvements() []string {
	var out []string
	if t == Grassland || t == Plains {
		out = append(out, "farm")
	}
	if t == Hills || t == Plains || t == Desert {
		out = append(out, "mine")
	}
	return out
}

// Settleable reports whether a city may be founded on the terrain.
func (t Terrain) Settleable() bool {
	return t != Ocean && t != Mountains
}

// Map is the static grid of the sandbox world. Tiles are stored row-major.
type Map struct {
	Width  int
	Height int
	Tiles  []Tile
}

// orthogonal steps in N, E, S, W order
var directions = []Coord{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

func NewMap(width, height int) *Map {
	m := &Map{Width: width, Height: height, Tiles: make([]Tile, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Tiles[y*width+x] = Tile{Location: Coord{x, y}, Terrain: Grassland}
		}
	}
	return m
}

// GenerateMap builds a map with an ocean rim and randomly clustered land terrain.
func GenerateMap(width, height int, rng *rand.Rand) *Map {
	m := NewMap(width, height)
	weights := []struct {
		terrain Terrain
		weight  int
	}{
		{Grassland, 30}, {Plains, 25}, {Hills, 12}, {Forest, 13}, {Desert, 8}, {Mountains, 6}, {Ocean, 6},
	}
	total := 0
	for _, w := range weights {
		total += w.weight
	}
	for i := range m.Tiles {
		c := m.Tiles[i].Location
		if c.X == 0 || c.Y == 0 || c.X == width-1 || c.Y == height-1 {
			m.Tiles[i].Terrain = Ocean
			continue
		}
		// Half the time copy the western neighbour to form clusters
		if c.X > 1 && rng.IntN(2) == 0 {
			m.Tiles[i].Terrain = m.Tiles[i-1].Terrain
			continue
		}
		roll := rng.IntN(total)
		for _, w := range weights {
			if roll < w.weight {
				m.Tiles[i].Terrain = w.terrain
				break
			}
			roll -= w.weight
		}
	}
	return m
}

func (m *Map) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

func (m *Map) At(c Coord) *Tile {
	if !m.InBounds(c) {
		return nil
	}
	return &m.Tiles[c.Y*m.Width+c.X]
}

// Adjacent returns the in-bounds orthogonal neighbours of c.
func (m *Map) Adjacent(c Coord) []Coord {
	out := make([]Coord, 0, len(directions))
	for _, d := range directions {
		n := Coord{c.X + d.X, c.Y + d.Y}
		if m.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Surrounding returns the in-bounds 8-neighbourhood of c.
func (m *Map) Surrounding(c Coord) []Coord {
	out := make([]Coord, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			n := Coord{c.X + dx, c.Y + dy}
			if (dx != 0 || dy != 0) && m.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// Reveal marks every tile within radius of c as explored.
func (m *Map) Reveal(c Coord, radius int) {
	for y := c.Y - radius; y <= c.Y+radius; y++ {
		for x := c.X - radius; x <= c.X+radius; x++ {
			if t := m.At(Coord{x, y}); t != nil {
				t.Explored = true
			}
		}
	}
}

// StartingPositions picks up to n settleable tiles spread across the map.
func (m *Map) StartingPositions(n int, rng *rand.Rand) []Coord {
	var candidates []Coord
	for _, t := range m.Tiles {
		if t.Terrain == Grassland || t.Terrain == Plains {
			candidates = append(candidates, t.Location)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	minGap := max(m.Width, m.Height) / (n + 1)
	var picked []Coord
	for _, c := range candidates {
		ok := true
		for _, p := range picked {
			if c.Chebyshev(p) < minGap {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, c)
			if len(picked) == n {
				break
			}
		}
	}
	return picked
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
