package models

// CurrentUVResponse is the current UV observation for a coordinate.
type CurrentUVResponse struct {
	Point      Point     `json:"point"`
	UVIndex    int       `json:"uvIndex"`
	UVRaw      float64   `json:"uvRaw"`
	RiskBand   string    `json:"riskBand"`
	CloudCover float64   `json:"cloudCover"`
	ObservedAt Timestamp `json:"observedAt"`
	Provider   string    `json:"provider,omitempty"`
}

// UVForecastResponse is an hourly UV forecast for a coordinate.
type UVForecastResponse struct {
	Point  Point            `json:"point"`
	Hourly []UVForecastHour `json:"hourly"`
}

// UVForecastHour is a single hour in a UV forecast.
type UVForecastHour struct {
	Time     Timestamp `json:"time"`
	UVIndex  int       `json:"uvIndex"`
	RiskBand string    `json:"riskBand"`
}
