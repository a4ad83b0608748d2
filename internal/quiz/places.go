package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"strings"
)

// Place is a find-the-place location with its target in map space.
type Place struct {
	Name        string
	Description string
	Image       string
	X, Y        float64
}

// fallbackPlace is used when no location data can be loaded.
var fallbackPlace = placeRecord{
	Name:        "Taj Mahal",
	Description: "Iconic marble mausoleum in Agra, India",
	Image:       "images/tajmahal.webp",
	Coordinates: coordinates{Latitude: ptr(27.1751), Longitude: ptr(78.0421)},
}

func ptr(v float64) *float64 { return &v }

type coordinates struct {
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type placeRecord struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Coordinates coordinates `json:"coordinates"`
}

// Project maps latitude/longitude onto an equirectangular map of size w×h.
func Project(lat, lon, w, h float64) (x, y float64) {
	x = (lon + 180.0) / 360.0 * w
	y = (90.0 - lat) / 180.0 * h
	return x, y
}

// Unproject is the inverse of Project.
func Unproject(x, y, w, h float64) (lat, lon float64) {
	lon = x/w*360.0 - 180.0
	lat = 90.0 - y/h*180.0
	return lat, lon
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0
	rad := math.Pi / 180.0
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// FallbackPlaces returns the built-in location set projected onto a map.
func FallbackPlaces(mapW, mapH float64) []Place {
	p, _ := fallbackPlace.resolve(mapW, mapH)
	return []Place{p}
}

func (r placeRecord) resolve(w, h float64) (Place, error) {
	p := Place{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Image:       r.Image,
	}
	if p.Name == "" {
		return p, errors.New("place has no name")
	}
	c := r.Coordinates
	switch {
	case c.X != nil && c.Y != nil:
		p.X, p.Y = *c.X, *c.Y
	case c.Latitude != nil && c.Longitude != nil:
		p.X, p.Y = Project(*c.Latitude, *c.Longitude, w, h)
	default:
		return p, fmt.Errorf("place %q has no coordinates", p.Name)
	}
	return p, nil
}

// LoadPlaces reads {"places": [...]} from fsys. Records with neither map
// coordinates nor latitude/longitude are dropped. When nothing usable is
// found the single fallback place is returned and ok is false.
func LoadPlaces(fsys fs.FS, name string, mapW, mapH float64, logger *slog.Logger) ([]Place, bool) {
	if logger == nil {
		logger = slog.Default()
	}
	fallback := func(err error) ([]Place, bool) {
		logger.Warn("places_fallback", "file", name, "err", err)
		return FallbackPlaces(mapW, mapH), false
	}
	if name == "" {
		return fallback(errors.New("no source configured"))
	}
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fallback(err)
	}
	var doc struct {
		Places []placeRecord `json:"places"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fallback(fmt.Errorf("decode places: %w", err))
	}
	out := make([]Place, 0, len(doc.Places))
	for i, rec := range doc.Places {
		p, err := rec.resolve(mapW, mapH)
		if err != nil {
			logger.Warn("place_dropped", "index", i, "err", err)
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return fallback(errors.New("no usable places"))
	}
	logger.Info("places_loaded", "count", len(out))
	return out, true
}
