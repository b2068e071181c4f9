package model

// Performance holds the derived vehicle performance for a car on a track.
type Performance struct {
	TopSpeed         int     `json:"topSpeed"`        // km/h
	Acceleration     float64 `json:"acceleration"`    // sec (0-100)
	FuelConsumption  float64 `json:"fuelConsumption"` // l/lap
	LapTime          float64 `json:"lapTime"`         // sec
	CorneringAbility int     `json:"corneringAbility"`
}

func (p *Performance) OverallRating() int {
	return int(float64(p.TopSpeed)/10.0 + float64(p.CorneringAbility)*10 - p.Acceleration*5)
}
