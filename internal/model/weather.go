package model

// City is a geocoding search result
type City struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DailyForecast is one day of the forecast carousel
type DailyForecast struct {
	Date            string  `json:"date"`
	WeatherCode     int     `json:"weather_code"`
	TemperatureMaxC float64 `json:"temperature_max_c"`
	TemperatureMinC float64 `json:"temperature_min_c"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	WindSpeedMaxKMH float64 `json:"wind_speed_max_kmh"`
}

// ForecastBundle is the 7-day forecast for a coordinate pair
type ForecastBundle struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Timezone  string          `json:"timezone"`
	Days      []DailyForecast `json:"days"`
}
