package core

import (
	"math"
	"testing"
)

func TestNeighborWrapsHorizontally(t *testing.T) {
	g := NewGrid(10, 6)

	idx, ok := g.Neighbor(0, 3, -1, 0)
	if !ok {
		t.Fatal("horizontal step must wrap, not fall off")
	}
	if x, y := g.Coords(idx); x != 9 || y != 3 {
		t.Fatalf("expected wrap to (9,3), got (%d,%d)", x, y)
	}

	idx, ok = g.Neighbor(9, 3, 1, 0)
	if !ok {
		t.Fatal("horizontal step must wrap, not fall off")
	}
	if x, _ := g.Coords(idx); x != 0 {
		t.Fatalf("expected wrap to x=0, got x=%d", x)
	}
}

func TestNeighborClampsAtPoles(t *testing.T) {
	g := NewGrid(10, 6)

	if _, ok := g.Neighbor(4, 0, 0, -1); ok {
		t.Fatal("stepping north of the pole must report ok=false")
	}
	if _, ok := g.Neighbor(4, 5, 0, 1); ok {
		t.Fatal("stepping south of the pole must report ok=false")
	}
	if _, ok := g.Neighbor(4, 0, 1, 1); !ok {
		t.Fatal("diagonal step within bounds must succeed")
	}
}

func TestLatitude(t *testing.T) {
	g := NewGrid(4, 5)
	if lat := g.Latitude(0); lat != -1 {
		t.Fatalf("north pole latitude = %f, want -1", lat)
	}
	if lat := g.Latitude(4); lat != 1 {
		t.Fatalf("south pole latitude = %f, want 1", lat)
	}
	if lat := g.Latitude(2); lat != 0 {
		t.Fatalf("equator latitude = %f, want 0", lat)
	}
}

func TestSanitize(t *testing.T) {
	if v := Sanitize(math.NaN()); v != 0 {
		t.Fatalf("NaN must sanitize to 0, got %f", v)
	}
	if v := Sanitize(math.Inf(1)); v != 0 {
		t.Fatalf("+Inf must sanitize to 0, got %f", v)
	}
	if v := Sanitize(math.Inf(-1)); v != 0 {
		t.Fatalf("-Inf must sanitize to 0, got %f", v)
	}
	if v := Sanitize(1.5); v != 1.5 {
		t.Fatalf("finite values must pass through, got %f", v)
	}
	if v := SanitizeClamp(math.NaN(), -1, 1); v != 0 {
		t.Fatalf("SanitizeClamp(NaN) = %f, want 0", v)
	}
	if v := SanitizeClamp(7, 0, 5); v != 5 {
		t.Fatalf("SanitizeClamp over range = %f, want 5", v)
	}
}
