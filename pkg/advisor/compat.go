package advisor

import "github.com/mpapenbr/race-strategy-sim/pkg/model"

type Compatibility string

const (
	CompatibilityHigh   Compatibility = "High"
	CompatibilityMedium Compatibility = "Medium"
	CompatibilityLow    Compatibility = "Low"
)

// TrackCompatibility rates how well a strategy fits to the track length.
func TrackCompatibility(track *model.Track, s *model.Strategy) Compatibility {
	switch {
	case track.Length > 6.0 && s.PitStops > 0:
		return CompatibilityHigh
	case track.Length < 3.0 && s.PitStops == 0:
		return CompatibilityHigh
	case track.Length > 6.0 && s.PitStops == 0:
		return CompatibilityLow
	default:
		return CompatibilityMedium
	}
}

// StrategyHint returns a general strategy hint for the track length.
func StrategyHint(track *model.Track) string {
	switch {
	case track.Length > 6.0:
		return "medium fuel with 1-2 pit stops recommended for long tracks"
	case track.Length < 3.0:
		return "light fuel with minimal pit stops recommended for short tracks"
	default:
		return "balanced approach works well for medium-length tracks"
	}
}
