package models

import (
	"fmt"
	"strings"
)

// UnitSystem identifies the measurement convention requested from the service
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
	Standard UnitSystem = "standard" // Kelvin, as the service defines it
)

// UnitLabels are the display suffixes derived from a UnitSystem
type UnitLabels struct {
	Temperature string
	WindSpeed   string
	Visibility  string
}

// ParseUnitSystem converts a user supplied value into a UnitSystem
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch u := UnitSystem(strings.ToLower(strings.TrimSpace(s))); u {
	case Metric, Imperial, Standard:
		return u, nil
	case "":
		return Metric, nil
	default:
		return "", fmt.Errorf("unknown unit system %q (want metric, imperial or standard)", s)
	}
}

// Labels returns the unit suffixes for this system
func (u UnitSystem) Labels() UnitLabels {
	switch u {
	case Imperial:
		return UnitLabels{Temperature: "°F", WindSpeed: "mph", Visibility: "mi"}
	case Standard:
		return UnitLabels{Temperature: "K", WindSpeed: "m/s", Visibility: "mi"}
	default:
		return UnitLabels{Temperature: "°C", WindSpeed: "m/s", Visibility: "km"}
	}
}

// Toggle flips between metric and imperial. Standard toggles to metric.
func (u UnitSystem) Toggle() UnitSystem {
	if u == Metric {
		return Imperial
	}
	return Metric
}

func (u UnitSystem) String() string {
	if u == "" {
		return string(Metric)
	}
	return string(u)
}
