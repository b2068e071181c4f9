package catalog

import (
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

func Monaco() model.Track {
	return model.Track{
		ID: 1, Name: "Monaco", Length: 3.3, Corners: 19,
		Difficulty: model.DifficultyHard, Surface: "Smooth",
	}
}

func Monza() model.Track {
	return model.Track{
		ID: 2, Name: "Monza", Length: 5.8, Corners: 11,
		Difficulty: model.DifficultyMedium, Surface: "Smooth",
	}
}

func Silverstone() model.Track {
	return model.Track{
		ID: 3, Name: "Silverstone", Length: 5.9, Corners: 18,
		Difficulty: model.DifficultyMedium, Surface: "Smooth",
	}
}

func Tracks() []model.Track {
	return []model.Track{Monaco(), Monza(), Silverstone()}
}

func TrackByName(name string) (model.Track, bool) {
	return lo.Find(Tracks(), func(t model.Track) bool {
		return strings.EqualFold(t.Name, strings.TrimSpace(name))
	})
}

func Dry() model.Weather {
	return model.Weather{Condition: "Dry", Temperature: 25, WindSpeed: 10, RainIntensity: 0}
}

func Wet() model.Weather {
	return model.Weather{Condition: "Wet", Temperature: 15, WindSpeed: 20, RainIntensity: 7}
}

func Mixed() model.Weather {
	return model.Weather{Condition: "Mixed", Temperature: 20, WindSpeed: 25, RainIntensity: 3}
}

func WeatherConditions() []model.Weather {
	return []model.Weather{Dry(), Wet(), Mixed()}
}

func WeatherByName(name string) (model.Weather, bool) {
	return lo.Find(WeatherConditions(), func(w model.Weather) bool {
		return strings.EqualFold(w.Condition, strings.TrimSpace(name))
	})
}

func Aggressive() model.Strategy {
	return model.Strategy{
		PitStops: 3, TyreStrategy: "Soft-Medium", FuelLoad: model.FuelLight, EstimatedRaceTime: 90,
	}
}

func Balanced() model.Strategy {
	return model.Strategy{
		PitStops: 2, TyreStrategy: "Medium-Hard", FuelLoad: model.FuelMedium, EstimatedRaceTime: 95,
	}
}

func Conservative() model.Strategy {
	return model.Strategy{
		PitStops: 1, TyreStrategy: "Medium-Hard", FuelLoad: model.FuelHeavy, EstimatedRaceTime: 100,
	}
}

// Strategies returns the presets keyed by name.
func Strategies() map[string]model.Strategy {
	return map[string]model.Strategy{
		"Aggressive":   Aggressive(),
		"Balanced":     Balanced(),
		"Conservative": Conservative(),
	}
}

func StrategyByName(name string) (model.Strategy, bool) {
	for k, v := range Strategies() {
		if strings.EqualFold(k, strings.TrimSpace(name)) {
			return v, true
		}
	}
	return model.Strategy{}, false
}
