package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

const (
	// forecastTimeLayout is the format of forecast "datetime" values (UTC)
	forecastTimeLayout = "2006-01-02 15:04:05"
	maxForecastEntries = 5
)

// CurrentWeather retrieves the current conditions for a location
func (c *HTTPClient) CurrentWeather(ctx context.Context, loc models.LocationRef, units models.UnitSystem) (*models.WeatherSnapshot, error) {
	const op = "current weather"

	var resp currentResponse
	if err := c.getJSON(ctx, op, "/weather/current", locationParams(loc, units), &resp); err != nil {
		return nil, err
	}

	snapshot, err := resp.toSnapshot(units, c.now())
	if err != nil {
		return nil, badResponse(op, 0, err)
	}
	return snapshot, nil
}

// Forecast retrieves the short-range forecast for a location. Calls go
// through a circuit breaker so a failing forecast endpoint is skipped quickly.
func (c *HTTPClient) Forecast(ctx context.Context, loc models.LocationRef, units models.UnitSystem) ([]models.ForecastEntry, error) {
	const op = "forecast"

	result, err := c.forecastBreaker.Execute(func() (interface{}, error) {
		var resp forecastResponse
		if err := c.getJSON(ctx, op, "/weather/forecast", locationParams(loc, units), &resp); err != nil {
			return nil, err
		}
		entries, err := resp.toEntries()
		if err != nil {
			return nil, badResponse(op, 0, err)
		}
		return entries, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, unreachable(op, fmt.Errorf("circuit breaker open: %w", err))
		}
		return nil, err
	}

	entries, ok := result.([]models.ForecastEntry)
	if !ok {
		return nil, badResponse(op, 0, fmt.Errorf("unexpected result type from circuit breaker"))
	}
	return entries, nil
}

// Internal types for weather service responses

type conditionPayload struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentResponse struct {
	Location *struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
	Temperature *struct {
		Current   *float64 `json:"current"`
		FeelsLike *float64 `json:"feels_like"`
		Min       float64  `json:"min"`
		Max       float64  `json:"max"`
	} `json:"temperature"`
	Weather *conditionPayload `json:"weather"`
	Details *struct {
		Humidity   *int     `json:"humidity"`
		Pressure   *int     `json:"pressure"`
		WindSpeed  *float64 `json:"wind_speed"`
		WindDeg    int      `json:"wind_deg"`
		Cloudiness *int     `json:"cloudiness"`
		Visibility *float64 `json:"visibility"`
	} `json:"details"`
	System *struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"system"`
}

// toSnapshot converts the payload, rejecting any response missing a required field
func (r currentResponse) toSnapshot(units models.UnitSystem, asOf time.Time) (*models.WeatherSnapshot, error) {
	switch {
	case r.Location == nil || r.Location.City == "":
		return nil, errMissing("location.city")
	case r.Temperature == nil || r.Temperature.Current == nil:
		return nil, errMissing("temperature.current")
	case r.Temperature.FeelsLike == nil:
		return nil, errMissing("temperature.feels_like")
	case r.Weather == nil || r.Weather.Icon == "":
		return nil, errMissing("weather.icon")
	case r.Details == nil:
		return nil, errMissing("details")
	case r.Details.Humidity == nil:
		return nil, errMissing("details.humidity")
	case r.Details.WindSpeed == nil:
		return nil, errMissing("details.wind_speed")
	case r.Details.Pressure == nil:
		return nil, errMissing("details.pressure")
	case r.Details.Visibility == nil:
		return nil, errMissing("details.visibility")
	case r.Details.Cloudiness == nil:
		return nil, errMissing("details.cloudiness")
	}

	snapshot := &models.WeatherSnapshot{
		City:    r.Location.City,
		Country: r.Location.Country,
		Temperature: models.Temperature{
			Current:   *r.Temperature.Current,
			FeelsLike: *r.Temperature.FeelsLike,
			Min:       r.Temperature.Min,
			Max:       r.Temperature.Max,
		},
		Condition: models.Condition{
			Icon:        r.Weather.Icon,
			Description: r.Weather.Description,
		},
		Details: models.Details{
			Humidity:   *r.Details.Humidity,
			WindSpeed:  *r.Details.WindSpeed,
			WindDeg:    r.Details.WindDeg,
			Pressure:   *r.Details.Pressure,
			Visibility: *r.Details.Visibility,
			Cloudiness: *r.Details.Cloudiness,
		},
		Units: units,
		AsOf:  asOf,
	}

	if r.System != nil {
		if r.System.Sunrise > 0 {
			snapshot.Sunrise = time.Unix(r.System.Sunrise, 0)
		}
		if r.System.Sunset > 0 {
			snapshot.Sunset = time.Unix(r.System.Sunset, 0)
		}
	}

	return snapshot, nil
}

type forecastResponse struct {
	Forecast []struct {
		Datetime    string            `json:"datetime"`
		Temperature *float64          `json:"temperature"`
		FeelsLike   float64           `json:"feels_like"`
		Weather     *conditionPayload `json:"weather"`
		Details     struct {
			Humidity  int     `json:"humidity"`
			WindSpeed float64 `json:"wind_speed"`
		} `json:"details"`
	} `json:"forecast"`
}

func (r forecastResponse) toEntries() ([]models.ForecastEntry, error) {
	entries := make([]models.ForecastEntry, 0, len(r.Forecast))

	for i, item := range r.Forecast {
		if len(entries) == maxForecastEntries {
			break
		}
		when, err := time.ParseInLocation(forecastTimeLayout, item.Datetime, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("forecast[%d].datetime: %w", i, err)
		}
		if item.Temperature == nil {
			return nil, errMissing(fmt.Sprintf("forecast[%d].temperature", i))
		}
		if item.Weather == nil {
			return nil, errMissing(fmt.Sprintf("forecast[%d].weather", i))
		}

		entries = append(entries, models.ForecastEntry{
			Time:        when,
			Temperature: *item.Temperature,
			FeelsLike:   item.FeelsLike,
			Condition: models.Condition{
				Icon:        item.Weather.Icon,
				Description: item.Weather.Description,
			},
			Humidity:  item.Details.Humidity,
			WindSpeed: item.Details.WindSpeed,
		})
	}

	return entries, nil
}

func errMissing(field string) error {
	return fmt.Errorf("missing field %s", field)
}
