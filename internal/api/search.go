package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

type searchResult struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	State   string `json:"state"`
}

// SearchLocations returns place suggestions matching query
func (c *HTTPClient) SearchLocations(ctx context.Context, query string) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)

	var results []searchResult
	if err := c.getJSON(ctx, "location search", "/location/search", params, &results); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(results))
	for _, r := range results {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Name:   name,
			Region: strings.ToUpper(strings.TrimSpace(r.Country)),
			State:  strings.TrimSpace(r.State),
		})
	}
	return candidates, nil
}
