package camera

import "image"

// Preset names for synthetic scenes
const (
	PresetScenario = "scenario"
	PresetCentered = "centered"
	PresetTop      = "top"
	PresetBottom   = "bottom"
	PresetHD       = "hd"
)

// Presets returns all available synthetic scenes.
func Presets() map[string]Scene {
	return map[string]Scene{
		PresetScenario: ScenarioScene(),
		PresetCentered: CenteredScene(),
		PresetTop:      TopScene(),
		PresetBottom:   BottomScene(),
		PresetHD:       HDScene(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetScenario,
		PresetCentered,
		PresetTop,
		PresetBottom,
		PresetHD,
	}
}

// GetPreset returns a scene by name, or nil if not found.
func GetPreset(name string) *Scene {
	if scene, ok := Presets()[name]; ok {
		return &scene
	}
	return nil
}

// ScenarioScene is the reference 100x100 frame: background 10 and a single
// 255 pixel at (80, 20).
func ScenarioScene() Scene {
	return Scene{
		Width:      100,
		Height:     100,
		Background: 10,
		Spot:       image.Pt(80, 20),
		Intensity:  255,
	}
}

// CenteredScene puts the spot on the frame center.
func CenteredScene() Scene {
	s := ScenarioScene()
	s.Spot = image.Pt(50, 50)
	return s
}

// TopScene puts the spot on the first row (0°).
func TopScene() Scene {
	s := ScenarioScene()
	s.Spot = image.Pt(50, 0)
	return s
}

// BottomScene puts the spot on the last row.
func BottomScene() Scene {
	s := ScenarioScene()
	s.Spot = image.Pt(50, 99)
	return s
}

// HDScene is a 1280x720 frame with the spot in the lower left quadrant.
// Its diagonal is long enough to exercise the 300px centered threshold.
func HDScene() Scene {
	return Scene{
		Width:      1280,
		Height:     720,
		Background: 20,
		Spot:       image.Pt(200, 600),
		Intensity:  255,
	}
}
