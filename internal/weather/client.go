// Package weather talks to an Open-Meteo style forecast and geocoding API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"app/internal/model"
)

// ForecastDays is the length of the forecast carousel.
const ForecastDays = 7

type Client struct {
	geocodingBaseURL string
	forecastBaseURL  string
	httpClient       *http.Client
}

func NewClient(geocodingBaseURL, forecastBaseURL string) *Client {
	return &Client{
		geocodingBaseURL: geocodingBaseURL,
		forecastBaseURL:  forecastBaseURL,
		httpClient:       &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// SearchCities resolves a free-text city query to candidate locations.
func (c *Client) SearchCities(ctx context.Context, query string, limit int) ([]model.City, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("name", query)
	q.Set("count", strconv.Itoa(limit))
	q.Set("language", "en")
	q.Set("format", "json")

	var resp geocodingResponse
	if err := c.getJSON(ctx, c.geocodingBaseURL+"/search?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search cities %q: %w", query, err)
	}

	cities := make([]model.City, 0, len(resp.Results))
	for _, r := range resp.Results {
		cities = append(cities, model.City{
			Name:      r.Name,
			Country:   r.Country,
			Admin1:    r.Admin1,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return cities, nil
}

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time           []string  `json:"time"`
		WeatherCode    []int     `json:"weather_code"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		Precipitation  []float64 `json:"precipitation_sum"`
		WindSpeedMax   []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

// Forecast fetches the 7-day daily forecast for a coordinate pair.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*model.ForecastBundle, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max")
	q.Set("forecast_days", strconv.Itoa(ForecastDays))
	q.Set("timezone", "auto")

	var resp forecastResponse
	if err := c.getJSON(ctx, c.forecastBaseURL+"/forecast?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetch forecast for %.4f,%.4f: %w", lat, lon, err)
	}

	bundle := &model.ForecastBundle{
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  resp.Timezone,
		Days:      make([]model.DailyForecast, 0, len(resp.Daily.Time)),
	}
	for i, date := range resp.Daily.Time {
		day := model.DailyForecast{Date: date}
		if i < len(resp.Daily.WeatherCode) {
			day.WeatherCode = resp.Daily.WeatherCode[i]
		}
		if i < len(resp.Daily.TemperatureMax) {
			day.TemperatureMaxC = resp.Daily.TemperatureMax[i]
		}
		if i < len(resp.Daily.TemperatureMin) {
			day.TemperatureMinC = resp.Daily.TemperatureMin[i]
		}
		if i < len(resp.Daily.Precipitation) {
			day.PrecipitationMM = resp.Daily.Precipitation[i]
		}
		if i < len(resp.Daily.WindSpeedMax) {
			day.WindSpeedMaxKMH = resp.Daily.WindSpeedMax[i]
		}
		bundle.Days = append(bundle.Days, day)
	}
	return bundle, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
