package model

// ResultSummary aggregates a list of race outcomes.
type ResultSummary struct {
	Count           int     `json:"count"`
	AverageRaceTime float64 `json:"averageRaceTime"` // minutes
	BestRaceTime    float64 `json:"bestRaceTime"`    // minutes
	FastestCar      string  `json:"fastestCar"`
	MostUsedCar     string  `json:"mostUsedCar"`
}

// Summarize returns an empty summary for no results. On equal usage the car
// seen first wins.
func Summarize(results []*RaceOutcome) ResultSummary {
	ret := ResultSummary{}
	if len(results) == 0 {
		return ret
	}
	usage := map[string]int{}
	order := []string{}
	sum := 0.0
	for i, r := range results {
		sum += r.TotalTime
		if i == 0 || r.TotalTime < ret.BestRaceTime {
			ret.BestRaceTime = r.TotalTime
			ret.FastestCar = r.CarName
		}
		if _, ok := usage[r.CarName]; !ok {
			order = append(order, r.CarName)
		}
		usage[r.CarName]++
	}
	for _, name := range order {
		if usage[name] > usage[ret.MostUsedCar] {
			ret.MostUsedCar = name
		}
	}
	ret.Count = len(results)
	ret.AverageRaceTime = sum / float64(len(results))
	return ret
}
