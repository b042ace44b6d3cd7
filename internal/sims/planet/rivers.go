package planet

import (
	icore "planetsim/internal/core"
)

// River is a traced drainage channel. Owned exclusively by the hydrology
// engine; collaborators read it, never mutate it.
type River struct {
	ID     int32
	Source icore.Point
	Mouth  icore.Point
	Path   []icore.Point
	Volume float64
}

// traceRiver follows steepest descent from a source until open water, ice, a
// pit, or the length cap. Visited land cells are recorded for bed carving.
func (e *HydrologyEngine) traceRiver(sx, sy int) []icore.Point {
	w := e.w
	maxLen := w.cfg.Params.RiverMaxLength
	if maxLen <= 0 {
		maxLen = 200
	}

	path := make([]icore.Point, 0, 16)
	x, y := sx, sy
	for len(path) < maxLen {
		idx := w.grid.Index(x, y)
		if w.ice[idx] {
			break
		}
		path = append(path, icore.Point{X: x, Y: y})
		if w.elevation[idx] <= 0 {
			// Reached open water: this cell is the mouth.
			break
		}

		bestIdx, bestX, bestY := -1, 0, 0
		bestElev := w.elevation[idx]
		for _, off := range icore.MooreOffsets {
			n, ok := w.grid.Neighbor(x, y, off[0], off[1])
			if !ok {
				continue
			}
			if w.elevation[n] < bestElev {
				bestElev = w.elevation[n]
				bestIdx, bestX, bestY = n, w.grid.WrapX(x+off[0]), y+off[1]
			}
		}
		if bestIdx < 0 {
			break // pit
		}
		// Loop guard: steepest descent cannot revisit on static terrain,
		// but carving from earlier rivers this tick can create cycles.
		if len(path) > 1 && bestX == path[len(path)-2].X && bestY == path[len(path)-2].Y {
			break
		}
		x, y = bestX, bestY
	}
	return path
}

// spawnRiver registers a traced path as a river, carving its bed slightly
// into the terrain at the stage barrier.
func (e *HydrologyEngine) spawnRiver(path []icore.Point) *River {
	w := e.w
	if len(path) < 2 {
		return nil
	}
	w.nextRiverID++
	r := &River{
		ID:     w.nextRiverID,
		Source: path[0],
		Mouth:  path[len(path)-1],
		Path:   path,
	}

	volume := 0.0
	for _, pt := range path {
		idx := w.grid.Index(pt.X, pt.Y)
		w.geo.riverID[idx] = r.ID
		volume += w.geo.accumFlow[idx]
		if w.elevation[idx] > 0 {
			e.carve = append(e.carve, int32(idx))
		}
	}
	r.Volume = icore.SanitizeClamp(volume/float64(len(path)), 0, 1e6)

	w.rivers[r.ID] = r
	e.log.Info().Int32("river", r.ID).
		Int("len", len(path)).
		Int("source_x", r.Source.X).Int("source_y", r.Source.Y).
		Msg("river formed")
	return r
}

// maintainRivers updates volumes and removes rivers whose path has mostly
// frozen. Cells pointing at a removed river fall back to riverID 0; lookups
// by id are nil-safe.
func (e *HydrologyEngine) maintainRivers() {
	w := e.w
	for id, r := range w.rivers {
		frozen := 0
		volume := 0.0
		for _, pt := range r.Path {
			idx := w.grid.Index(pt.X, pt.Y)
			if w.ice[idx] {
				frozen++
			}
			volume += w.geo.accumFlow[idx]
		}
		if frozen*2 > len(r.Path) {
			for _, pt := range r.Path {
				idx := w.grid.Index(pt.X, pt.Y)
				if w.geo.riverID[idx] == id {
					w.geo.riverID[idx] = 0
				}
			}
			delete(w.rivers, id)
			e.log.Info().Int32("river", id).Msg("river frozen out")
			continue
		}
		r.Volume = icore.SanitizeClamp(volume/float64(len(r.Path)), 0, 1e6)
	}
}

// RiverByID returns the river with the given id, or nil. A riverID left on a
// cell after its river was removed simply resolves to nil.
func (w *World) RiverByID(id int32) *River {
	if id == 0 {
		return nil
	}
	return w.rivers[id]
}
