package catalog

import (
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

const (
	TrackTypeHighSpeed = "highspeed"
	TrackTypeTechnical = "technical"
	TrackTypeBalanced  = "balanced"
)

func StandardAeroKit() model.AeroKit {
	return model.AeroKit{
		Name: "Standard Kit", DragCoefficient: 0.30, Downforce: 200, TopSpeedImpact: 250,
	}
}

func HighDownforceKit() model.AeroKit {
	return model.AeroKit{
		Name: "High Downforce Kit", DragCoefficient: 0.35, Downforce: 350, TopSpeedImpact: 220,
	}
}

func LowDragKit() model.AeroKit {
	return model.AeroKit{
		Name: "Low Drag Kit", DragCoefficient: 0.25, Downforce: 150, TopSpeedImpact: 280,
	}
}

func AdjustableKit() model.AeroKit {
	return model.AeroKit{
		Name: "Adjustable Aero Kit", DragCoefficient: 0.30, Downforce: 250, TopSpeedImpact: 240,
	}
}

func GroundEffectKit() model.AeroKit {
	return model.AeroKit{
		Name: "Ground Effect Kit", DragCoefficient: 0.27, Downforce: 400, TopSpeedImpact: 240,
	}
}

func ExtremeAeroKit() model.AeroKit {
	return model.AeroKit{
		Name: "Extreme Aero Kit", DragCoefficient: 0.40, Downforce: 500, TopSpeedImpact: 200,
	}
}

func AeroKits() []model.AeroKit {
	return []model.AeroKit{
		StandardAeroKit(),
		HighDownforceKit(),
		LowDragKit(),
		AdjustableKit(),
		GroundEffectKit(),
		ExtremeAeroKit(),
	}
}

// AeroKitByName matches the full kit name or the name without the "kit" suffix,
// both case-insensitive.
func AeroKitByName(name string) (model.AeroKit, bool) {
	key := normalizeKitName(name)
	return lo.Find(AeroKits(), func(k model.AeroKit) bool {
		return normalizeKitName(k.Name) == key
	})
}

func normalizeKitName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " kit")
	return strings.TrimSpace(s)
}

// AeroKitsForTrackType returns the kits suitable for a track type.
// Unknown types are handled as balanced.
func AeroKitsForTrackType(trackType string) []model.AeroKit {
	switch strings.ToLower(trackType) {
	case TrackTypeHighSpeed:
		return []model.AeroKit{LowDragKit(), StandardAeroKit()}
	case TrackTypeTechnical:
		return []model.AeroKit{HighDownforceKit(), GroundEffectKit()}
	default:
		return []model.AeroKit{AdjustableKit(), StandardAeroKit()}
	}
}

func BestAeroKitForTrack(t *model.Track) model.AeroKit {
	switch {
	case t.Difficulty == model.DifficultyHard || t.Corners > 15:
		return ExtremeAeroKit()
	case t.Difficulty == model.DifficultyMedium && t.Corners > 10:
		return GroundEffectKit()
	default:
		return LowDragKit()
	}
}
