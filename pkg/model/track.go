package model

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Track is the immutable track profile.
// Weather is the condition the track is currently exposed to. A nil value
// is treated as dry.
type Track struct {
	ID         int        `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Length     float64    `json:"length" yaml:"length"` // km
	Corners    int        `json:"corners" yaml:"corners"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	Surface    string     `json:"surface" yaml:"surface"`
	Weather    *Weather   `json:"weather,omitempty" yaml:"weather,omitempty"`
}

// WithWeather returns a copy of the track exposed to w.
func (t Track) WithWeather(w Weather) Track {
	t.Weather = &w
	return t
}

// EffectiveGrip is reduced by 20% in heavy rain.
func (t *Track) EffectiveGrip() float64 {
	if t.Weather != nil && t.Weather.RainIntensity > 5 {
		return 0.8
	}
	return 1.0
}

// Rating combines corners and length.
func (t *Track) Rating() float64 {
	return float64(t.Corners) * t.Length
}
