package location

import (
	"errors"
	"strings"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

// DefaultFallbackRegion is used when neither the input nor the table names a region
const DefaultFallbackRegion = "UK"

// ErrNoInput is returned for a blank submission
var ErrNoInput = errors.New("please enter a city name")

// Parser converts "City" or "City, CC" into a LocationRef
type Parser struct {
	table    RegionTable
	fallback string
}

// NewParser creates a parser backed by table. An empty fallback selects DefaultFallbackRegion.
func NewParser(table RegionTable, fallback string) *Parser {
	if table == nil {
		table = StaticTable(BuiltinRegions)
	}
	fallback = strings.ToUpper(strings.TrimSpace(fallback))
	if fallback == "" {
		fallback = DefaultFallbackRegion
	}
	return &Parser{table: table, fallback: fallback}
}

// Parse splits raw on the first comma into a name and an optional region.
// "Paris," is treated the same as "Paris". A table lookup error falls back
// to the default region rather than failing the submission.
func (p *Parser) Parse(raw string) (models.LocationRef, error) {
	name, region, _ := strings.Cut(raw, ",")
	name = strings.TrimSpace(name)
	region = strings.TrimSpace(region)

	if name == "" {
		return models.LocationRef{}, ErrNoInput
	}

	if region == "" {
		region = p.fallback
		if r, ok, err := p.table.DefaultRegion(name); err == nil && ok {
			region = r
		}
	}

	return models.NewLocationRef(name, region)
}
