package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type stubSource struct {
	forecastCalls int
	forecastErr   error
}

func (s *stubSource) SearchCities(ctx context.Context, query string, limit int) ([]model.City, error) {
	return []model.City{{Name: "Paris", Country: "France", Latitude: 48.85, Longitude: 2.35}}, nil
}

func (s *stubSource) Forecast(ctx context.Context, lat, lon float64) (*model.ForecastBundle, error) {
	s.forecastCalls++
	if s.forecastErr != nil {
		return nil, s.forecastErr
	}
	return &model.ForecastBundle{
		Latitude:  lat,
		Longitude: lon,
		Timezone:  "Europe/Paris",
		Days:      []model.DailyForecast{{Date: "2025-06-01", WeatherCode: 3}},
	}, nil
}

func TestForecastCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &stubSource{}
	svc := NewWeatherService(source, cache, 10*time.Minute, zerolog.Nop())

	ctx := context.Background()
	first, err := svc.Forecast(ctx, 48.85, 2.35)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	second, err := svc.Forecast(ctx, 48.85, 2.35)
	if err != nil {
		t.Fatalf("second Forecast returned error: %v", err)
	}
	if source.forecastCalls != 1 {
		t.Fatalf("expected one upstream call, got %d", source.forecastCalls)
	}
	if first.Timezone != second.Timezone || len(first.Days) != len(second.Days) {
		t.Fatalf("cached forecast differs: %+v vs %+v", first, second)
	}
}

func TestForecastCacheKeyRounding(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &stubSource{}
	svc := NewWeatherService(source, cache, 10*time.Minute, zerolog.Nop())

	ctx := context.Background()
	if _, err := svc.Forecast(ctx, 48.8501, 2.3501); err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if _, err := svc.Forecast(ctx, 48.8503, 2.3502); err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if source.forecastCalls != 1 {
		t.Fatalf("expected nearby coordinates to share a cache entry, got %d upstream calls", source.forecastCalls)
	}
}

func TestForecastWithoutCache(t *testing.T) {
	source := &stubSource{}
	svc := NewWeatherService(source, nil, 10*time.Minute, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := svc.Forecast(ctx, 48.85, 2.35); err != nil {
			t.Fatalf("Forecast returned error: %v", err)
		}
	}
	if source.forecastCalls != 2 {
		t.Fatalf("expected every call to go upstream without a cache, got %d", source.forecastCalls)
	}
}

func TestForecastCorruptCacheEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Set("forecast:48.85:2.35", "{not json")

	source := &stubSource{}
	svc := NewWeatherService(source, cache, 10*time.Minute, zerolog.Nop())

	bundle, err := svc.Forecast(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if source.forecastCalls != 1 {
		t.Fatalf("expected corrupt entry to trigger a refetch, got %d calls", source.forecastCalls)
	}
	if bundle.Timezone != "Europe/Paris" {
		t.Fatalf("unexpected bundle: %+v", bundle)
	}
}

func TestForecastUpstreamFailure(t *testing.T) {
	source := &stubSource{forecastErr: errors.New("upstream down")}
	svc := NewWeatherService(source, nil, time.Minute, zerolog.Nop())

	if _, err := svc.Forecast(context.Background(), 48.85, 2.35); err == nil {
		t.Fatal("expected error when the upstream fails")
	}
}
