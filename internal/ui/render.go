package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ngmaloney/weather-terminal/internal/connectivity"
	"github.com/ngmaloney/weather-terminal/internal/models"
)

var (
	upper   = cases.Upper(language.English)
	lower   = cases.Lower(language.English)
	printer = message.NewPrinter(language.English)
)

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return upper.String(s[:size]) + lower.String(s[size:])
}

// renderCurrent renders the current conditions block
func renderCurrent(snap models.WeatherSnapshot) string {
	labels := snap.Units.Labels()

	header := titleStyle.Render(fmt.Sprintf("%s %s", conditionGlyph(snap.Condition.Icon), snap.Location().String()))
	temp := temperatureStyle.Render(fmt.Sprintf("%.0f%s", snap.Temperature.Current, labels.Temperature))
	desc := valueStyle.Render(capitalize(snap.Condition.Description))

	lines := []string{
		header,
		"",
		fmt.Sprintf("%s  %s", temp, desc),
		mutedStyle.Render(fmt.Sprintf("Feels like %.0f%s", snap.Temperature.FeelsLike, labels.Temperature)),
	}
	if snap.Temperature.Min != 0 || snap.Temperature.Max != 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Low %.0f%s · High %.0f%s",
			snap.Temperature.Min, labels.Temperature, snap.Temperature.Max, labels.Temperature)))
	}

	lines = append(lines, "",
		detailLine("Humidity", fmt.Sprintf("%d%%", snap.Details.Humidity)),
		detailLine("Wind", formatWind(snap.Details, labels)),
		detailLine("Pressure", printer.Sprintf("%d hPa", snap.Details.Pressure)),
		detailLine("Visibility", fmt.Sprintf("%.1f %s", snap.Details.Visibility, labels.Visibility)),
		detailLine("Cloudiness", fmt.Sprintf("%d%%", snap.Details.Cloudiness)),
	)

	if !snap.Sunrise.IsZero() && !snap.Sunset.IsZero() {
		lines = append(lines, detailLine("Sun", fmt.Sprintf("↑ %s  ↓ %s",
			snap.Sunrise.Local().Format("3:04 PM"), snap.Sunset.Local().Format("3:04 PM"))))
	}

	return sectionBoxStyle.Render(strings.Join(lines, "\n"))
}

func detailLine(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-11s", label)) + valueStyle.Render(value)
}

// formatWind formats speed and, when known, compass direction
func formatWind(d models.Details, labels models.UnitLabels) string {
	s := fmt.Sprintf("%.1f %s", d.WindSpeed, labels.WindSpeed)
	if d.WindDeg != 0 {
		s += " " + compassPoint(d.WindDeg)
	}
	return s
}

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func compassPoint(deg int) string {
	deg = ((deg % 360) + 360) % 360
	return compassPoints[((deg*10+225)/450)%8]
}

// renderForecast renders the forecast section. ok is false when the
// forecast could not be fetched.
func renderForecast(entries []models.ForecastEntry, ok bool, units models.UnitSystem) string {
	header := sectionHeaderStyle.Render("Forecast")
	if !ok {
		return header + "\n" + mutedStyle.Render("Forecast unavailable")
	}
	if len(entries) == 0 {
		return header + "\n" + mutedStyle.Render("No forecast available")
	}

	labels := units.Labels()
	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s  %s %s  %s  %s",
			labelStyle.Render(e.Time.Local().Format("Mon 3 PM")),
			conditionGlyph(e.Condition.Icon),
			temperatureStyle.Render(fmt.Sprintf("%5.0f%s", e.Temperature, labels.Temperature)),
			valueStyle.Render(capitalize(e.Condition.Description)),
			mutedStyle.Render(fmt.Sprintf("%d%% · %.1f %s", e.Humidity, e.WindSpeed, labels.WindSpeed)),
		))
	}
	return header + "\n" + strings.Join(lines, "\n")
}

// renderError renders an error view model
func renderError(kind models.ErrorKind, msg string) string {
	title := errorStyle.Render("✗ " + capitalize(kind.String()))
	return lipgloss.JoinVertical(lipgloss.Left, title, "", msg)
}

// renderStatus renders the status line: units, connectivity and freshness
func renderStatus(status connectivity.Status, units models.UnitSystem, lastRefresh, now time.Time, refreshing bool) string {
	var conn string
	switch status {
	case connectivity.Connected:
		conn = connectedStyle.Render("● connected")
	case connectivity.Degraded:
		conn = degradedStyle.Render("● slow connection")
	case connectivity.Offline:
		conn = offlineStyle.Render("● offline")
	default:
		conn = mutedStyle.Render("○ checking")
	}

	updated := "not updated yet"
	if !lastRefresh.IsZero() {
		updated = "updated " + humanize.RelTime(lastRefresh, now, "ago", "from now")
	}
	if refreshing {
		updated += " · refreshing"
	}

	return mutedStyle.Render(fmt.Sprintf("%s · ", units.String())) + conn + mutedStyle.Render(" · "+updated)
}
