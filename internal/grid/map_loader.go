package grid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Map file symbols.
const (
	SymbolOpen        = '.'
	SymbolWall        = '#'
	SymbolAgentSpawn  = 'E'
	SymbolTargetSpawn = 'P'
	commentPrefix     = ";"
)

// MapData contains a parsed map and the spawn points found in it
type MapData struct {
	Map         *Map
	AgentSpawns []Coord
	TargetSpawn Coord
	HasTarget   bool
}

// LoadMap loads a map from the specified file path
func LoadMap(mapPath string) (*MapData, error) {
	file, err := os.Open(mapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file %s: %w", mapPath, err)
	}
	defer file.Close()

	data, err := ParseMap(file)
	if err != nil {
		return nil, fmt.Errorf("map file %s: %w", mapPath, err)
	}
	return data, nil
}

// ParseMap reads a text map. Lines starting with ';' and blank lines are
// skipped; trailing whitespace is ignored.
func ParseMap(r io.Reader) (*MapData, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading map data: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("map contains no valid map data: %w", ErrEmptyMap)
	}

	width := len([]rune(lines[0]))
	data := &MapData{}
	rows := make([][]Cell, len(lines))

	for y, line := range lines {
		symbols := []rune(line)
		if len(symbols) != width {
			return nil, fmt.Errorf("line %d has inconsistent width: expected %d, got %d: %w", y+1, width, len(symbols), ErrNotRectangular)
		}
		rows[y] = make([]Cell, width)
		for x, symbol := range symbols {
			switch symbol {
			case SymbolOpen:
			case SymbolWall:
				rows[y][x] = Wall
			case SymbolAgentSpawn:
				data.AgentSpawns = append(data.AgentSpawns, Coord{X: x, Y: y})
			case SymbolTargetSpawn:
				if data.HasTarget {
					return nil, fmt.Errorf("line %d: second target spawn at column %d", y+1, x+1)
				}
				data.TargetSpawn = Coord{X: x, Y: y}
				data.HasTarget = true
			default:
				return nil, fmt.Errorf("line %d column %d: unknown map symbol %q", y+1, x+1, symbol)
			}
		}
	}

	m, err := New(rows)
	if err != nil {
		return nil, err
	}
	data.Map = m
	return data, nil
}

// FindMapFile looks for name in the usual asset locations relative to the
// working directory, so binaries and tests can run from different folders.
func FindMapFile(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return name, nil
	}

	possiblePaths := []string{
		name,
		filepath.Join("assets", "maps", name),
		filepath.Join("..", "assets", "maps", name),
		filepath.Join("..", "..", "assets", "maps", name),
	}
	for _, mapPath := range possiblePaths {
		if _, err := os.Stat(mapPath); err == nil {
			return mapPath, nil
		}
	}
	return "", fmt.Errorf("%s not found in any of the expected locations", name)
}

// DefaultArena is the built-in map used when no map file can be loaded.
const DefaultArena = `; built-in arena
####################
#E.................#
#..................#
#...######..####...#
#........#..#......#
#........#..#......#
#..####..#..#..##..#
#..#.....#.........#
#..#.....######....#
#..#...............#
#......P...........#
#........#######...#
#..................#
#.................E#
####################
`

// LoadMapOrArena finds and loads the named map, falling back to the built-in
// arena. The returned path is empty when the fallback was used, and err then
// says why; the map is usable either way.
func LoadMapOrArena(name string) (data *MapData, mapPath string, err error) {
	mapPath, err = FindMapFile(name)
	if err != nil {
		return ParseDefaultArena(), "", err
	}
	data, err = LoadMap(mapPath)
	if err != nil {
		return ParseDefaultArena(), "", err
	}
	return data, mapPath, nil
}

// ParseDefaultArena parses DefaultArena. It cannot fail.
func ParseDefaultArena() *MapData {
	data, err := ParseMap(strings.NewReader(DefaultArena))
	if err != nil {
		panic("grid: built-in arena is malformed: " + err.Error())
	}
	return data
}

// Render writes the map back out in file format, marking spawns.
func (d *MapData) Render(w io.Writer) error {
	marks := make(map[Coord]rune, len(d.AgentSpawns)+1)
	for _, c := range d.AgentSpawns {
		marks[c] = SymbolAgentSpawn
	}
	if d.HasTarget {
		marks[d.TargetSpawn] = SymbolTargetSpawn
	}

	bw := bufio.NewWriter(w)
	for y := 0; y < d.Map.Height(); y++ {
		for x := 0; x < d.Map.Width(); x++ {
			c := Coord{X: x, Y: y}
			symbol := SymbolOpen
			if mark, ok := marks[c]; ok {
				symbol = mark
			} else if d.Map.At(c) == Wall {
				symbol = SymbolWall
			}
			bw.WriteRune(symbol)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
