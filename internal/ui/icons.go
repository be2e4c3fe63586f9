package ui

// conditionGlyphs maps service icon codes to terminal glyphs
var conditionGlyphs = map[string]string{
	"01d": "☀️", "01n": "🌙", // clear sky
	"02d": "🌤️", "02n": "☁️", // few clouds
	"03d": "☁️", "03n": "☁️", // scattered clouds
	"04d": "☁️", "04n": "☁️", // broken clouds
	"09d": "🌧️", "09n": "🌧️", // shower rain
	"10d": "🌦️", "10n": "🌧️", // rain
	"11d": "⛈️", "11n": "⛈️", // thunderstorm
	"13d": "❄️", "13n": "❄️", // snow
	"50d": "🌫️", "50n": "🌫️", // mist
}

const defaultGlyph = "☀️"

// conditionGlyph returns the glyph for an icon code, falling back to the sun
func conditionGlyph(icon string) string {
	if g, ok := conditionGlyphs[icon]; ok {
		return g
	}
	return defaultGlyph
}
