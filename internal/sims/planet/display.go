package planet

import "image/color"

// Display cell classes, one byte per cell, for collaborators that want a
// quick visual read of the planet without touching the scalar fields.
const (
	DisplayDeepWater uint8 = iota
	DisplayShallowWater
	DisplayIce
	DisplayBareLand
	DisplayMountain
	DisplayRiver
	DisplayVegetation
	DisplayAnimal
	DisplayCivilization

	displayClassCount
)

// Cells exposes the display classification buffer.
func (w *World) Cells() []uint8 { return w.display }

func (w *World) updateDisplay() {
	for idx := range w.display {
		w.display[idx] = w.classify(idx)
	}
}

func (w *World) classify(idx int) uint8 {
	if w.ice[idx] {
		return DisplayIce
	}
	switch form := w.life[idx]; {
	case form == LifeCivilization:
		return DisplayCivilization
	case form >= LifeSimpleAnimal && form != LifeNone:
		return DisplayAnimal
	case (form == LifePlant || form == LifeAlgae) && w.biomass[idx] > 0.2:
		return DisplayVegetation
	}
	if w.geo.riverID[idx] != 0 {
		return DisplayRiver
	}
	elev := w.elevation[idx]
	switch {
	case elev <= -0.3:
		return DisplayDeepWater
	case elev <= 0:
		return DisplayShallowWater
	case elev > 0.6:
		return DisplayMountain
	default:
		return DisplayBareLand
	}
}

var planetPalette = [displayClassCount]color.RGBA{
	DisplayDeepWater:    {R: 10, G: 40, B: 110, A: 255},
	DisplayShallowWater: {R: 30, G: 90, B: 170, A: 255},
	DisplayIce:          {R: 225, G: 235, B: 245, A: 255},
	DisplayBareLand:     {R: 120, G: 96, B: 60, A: 255},
	DisplayMountain:     {R: 150, G: 150, B: 160, A: 255},
	DisplayRiver:        {R: 60, G: 130, B: 200, A: 255},
	DisplayVegetation:   {R: 50, G: 130, B: 50, A: 255},
	DisplayAnimal:       {R: 170, G: 120, B: 40, A: 255},
	DisplayCivilization: {R: 210, G: 60, B: 60, A: 255},
}

// Palette exposes the color used for each display class.
func (w *World) Palette() []color.RGBA {
	return planetPalette[:]
}
