package grid

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridchase/internal/geometry"
)

func TestNew_RejectsMalformed(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyMap) {
		t.Errorf("expected ErrEmptyMap, got %v", err)
	}
	_, err := FromInts([][]int{{0, 0}, {0}})
	if !errors.Is(err, ErrNotRectangular) {
		t.Errorf("expected ErrNotRectangular, got %v", err)
	}
}

func TestMap_IndexingConvention(t *testing.T) {
	// one wall at column 2, row 1
	m := MustFromInts([][]int{
		{0, 0, 0},
		{0, 0, 1},
	})
	if !m.IsWall(2, 1) {
		t.Errorf("expected wall at x=2,y=1")
	}
	if m.IsWall(1, 2) {
		t.Errorf("x/y must not be swapped")
	}
	if !m.IsWall(-1, 0) || !m.IsWall(3, 0) {
		t.Errorf("out of bounds reads as wall")
	}
	if m.Width() != 3 || m.Height() != 2 {
		t.Errorf("unexpected size %dx%d", m.Width(), m.Height())
	}
}

func TestMap_FloorVersusRound(t *testing.T) {
	m := MustFromInts([][]int{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}})
	p := geometry.Point{X: 1.6, Y: 0.4}

	if got := m.CellAt(p); got != (Coord{X: 1, Y: 0}) {
		t.Errorf("CellAt(%v) = %v, want {1 0}", p, got)
	}
	if got := m.NearestCell(p); got != (Coord{X: 2, Y: 0}) {
		t.Errorf("NearestCell(%v) = %v, want {2 0}", p, got)
	}
	if got := m.Clamp(Coord{X: 7, Y: -2}); got != (Coord{X: 2, Y: 0}) {
		t.Errorf("Clamp = %v, want {2 0}", got)
	}
}

func TestBoundaries_EmptyMapHasNone(t *testing.T) {
	m := MustFromInts([][]int{{0, 0}, {0, 0}})
	if n := len(m.Boundaries()); n != 0 {
		t.Errorf("expected no boundaries, got %d", n)
	}
}

func TestBoundaries_SingleWallCell(t *testing.T) {
	m := MustFromInts([][]int{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	got := m.Boundaries()
	if len(got) != 4 {
		t.Fatalf("expected 4 edges around the wall, got %d: %v", len(got), got)
	}
	want := map[geometry.Segment]bool{
		{A: geometry.Point{X: 1, Y: 1}, B: geometry.Point{X: 2, Y: 1}}: true,
		{A: geometry.Point{X: 1, Y: 2}, B: geometry.Point{X: 2, Y: 2}}: true,
		{A: geometry.Point{X: 1, Y: 1}, B: geometry.Point{X: 1, Y: 2}}: true,
		{A: geometry.Point{X: 2, Y: 1}, B: geometry.Point{X: 2, Y: 2}}: true,
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected segment %v", s)
		}
		if !s.IsAxisAligned() {
			t.Errorf("segment %v is not axis aligned", s)
		}
	}
}

func TestBoundaries_RowIsMerged(t *testing.T) {
	m := MustFromInts([][]int{
		{0, 0, 0, 0},
		{1, 1, 1, 0},
		{0, 0, 0, 0},
	})
	var horizontal []geometry.Segment
	for _, s := range m.Boundaries() {
		if s.A.Y == s.B.Y {
			horizontal = append(horizontal, s)
		}
	}
	if len(horizontal) != 2 {
		t.Fatalf("expected top and bottom runs, got %v", horizontal)
	}
	for _, s := range horizontal {
		if s.A.X != 0 || s.B.X != 3 {
			t.Errorf("expected run from x=0 to x=3, got %v", s)
		}
	}
}

func TestParseMap(t *testing.T) {
	src := "; comment\n" +
		"#####\n" +
		"#E.P#\n" +
		"\n" +
		"#..E#\n" +
		"#####\n"
	data, err := ParseMap(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if data.Map.Width() != 5 || data.Map.Height() != 4 {
		t.Fatalf("unexpected size %dx%d", data.Map.Width(), data.Map.Height())
	}
	if len(data.AgentSpawns) != 2 || data.AgentSpawns[0] != (Coord{X: 1, Y: 1}) || data.AgentSpawns[1] != (Coord{X: 3, Y: 2}) {
		t.Errorf("unexpected agent spawns %v", data.AgentSpawns)
	}
	if !data.HasTarget || data.TargetSpawn != (Coord{X: 3, Y: 1}) {
		t.Errorf("unexpected target spawn %v", data.TargetSpawn)
	}
	if data.Map.IsWall(1, 1) {
		t.Errorf("spawn cells are open")
	}
}

func TestParseMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "; nothing here\n\n"},
		{"ragged", "###\n##\n"},
		{"unknown symbol", "#x#\n"},
		{"two targets", "P.P\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMap(strings.NewReader(tt.src)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestLoadMap_RoundTrip(t *testing.T) {
	arena := ParseDefaultArena()

	var buf bytes.Buffer
	if err := arena.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	mapPath := filepath.Join(t.TempDir(), "arena.map")
	if err := os.WriteFile(mapPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}

	loaded, err := LoadMap(mapPath)
	if err != nil {
		t.Fatalf("load map: %v", err)
	}
	if loaded.Map.WallCount() != arena.Map.WallCount() {
		t.Errorf("wall count changed: %d vs %d", loaded.Map.WallCount(), arena.Map.WallCount())
	}
	if len(loaded.AgentSpawns) != 2 || !loaded.HasTarget {
		t.Errorf("spawns lost in round trip")
	}
}

func TestLoadMap_Missing(t *testing.T) {
	if _, err := LoadMap(filepath.Join(t.TempDir(), "nope.map")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadMapOrArena(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.map")
	bad := filepath.Join(dir, "bad.map")
	if err := os.WriteFile(good, []byte("E.P\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("E?P\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, path, err := LoadMapOrArena(good)
	if err != nil || path != good || data.Map.Width() != 3 {
		t.Errorf("good map: path=%q err=%v", path, err)
	}

	arenaWidth := ParseDefaultArena().Map.Width()
	for _, name := range []string{bad, filepath.Join(dir, "missing.map")} {
		data, path, err := LoadMapOrArena(name)
		if err == nil {
			t.Errorf("%s: expected the reason for the fallback", name)
		}
		if path != "" || data == nil || data.Map.Width() != arenaWidth {
			t.Errorf("%s: expected the built-in arena, got path %q", name, path)
		}
	}
}
