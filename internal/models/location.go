package models

import (
	"fmt"
	"strings"
)

// LocationRef identifies a place to query. It is a plain value: copies are
// independent and two refs are equal when both fields match.
type LocationRef struct {
	Name   string // city name, never empty once constructed
	Region string // ISO country/region code, may be empty
}

// NewLocationRef builds a LocationRef, trimming both parts and upper-casing the region
func NewLocationRef(name, region string) (LocationRef, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LocationRef{}, fmt.Errorf("location name cannot be empty")
	}
	return LocationRef{
		Name:   name,
		Region: strings.ToUpper(strings.TrimSpace(region)),
	}, nil
}

// IsZero reports whether the ref has no name
func (l LocationRef) IsZero() bool {
	return l.Name == ""
}

func (l LocationRef) String() string {
	if l.Region == "" {
		return l.Name
	}
	return l.Name + ", " + l.Region
}

// Candidate is a location-search suggestion
type Candidate struct {
	Name   string
	Region string // country code
	State  string // optional subdivision
}

// Location converts the candidate into the ref used for orchestration
func (c Candidate) Location() LocationRef {
	return LocationRef{Name: strings.TrimSpace(c.Name), Region: strings.ToUpper(strings.TrimSpace(c.Region))}
}

// Label is the single-line text shown in the candidate list
func (c Candidate) Label() string {
	parts := []string{c.Name}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	if c.Region != "" {
		parts = append(parts, c.Region)
	}
	return strings.Join(parts, ", ")
}
