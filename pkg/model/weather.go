package model

type Weather struct {
	Condition     string `json:"condition" yaml:"condition"`
	Temperature   int    `json:"temperature" yaml:"temperature"`     // celsius
	WindSpeed     int    `json:"windSpeed" yaml:"windSpeed"`         // km/h
	RainIntensity int    `json:"rainIntensity" yaml:"rainIntensity"` // 0 (dry) - 10 (heavy rain)
}

func (w Weather) IsChallenging() bool {
	return w.RainIntensity > 5 || w.WindSpeed > 30
}
