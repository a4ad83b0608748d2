package quiz

import "math"

const (
	// MaxDistance is the decay constant of the score curve, in km.
	MaxDistance = 3000.0
	// PixelsToKm converts map-space pixels to game kilometres.
	PixelsToKm = 2.5
	// MaxRoundScore is the score of a perfect guess.
	MaxRoundScore = 1000
	// DefaultRounds is the number of find-the-place rounds per game.
	DefaultRounds = 3
)

// Score maps a distance in km to round points.
func Score(distanceKm float64) int {
	if math.IsNaN(distanceKm) {
		return 0
	}
	if distanceKm < 0 {
		distanceKm = 0
	}
	return int(math.Round(MaxRoundScore * math.Exp(-distanceKm/MaxDistance)))
}

// MapDistanceKm is the scaled Euclidean distance between two map points.
func MapDistanceKm(ax, ay, bx, by float64) float64 {
	return math.Hypot(bx-ax, by-ay) * PixelsToKm
}
