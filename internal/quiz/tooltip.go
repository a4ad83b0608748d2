package quiz

import "github.com/Garsondee/GeoQuizz/internal/atlas"

// hiddenLabel is shown for regions the player has not revealed yet.
const hiddenLabel = "?"

// TooltipLabel is the hover text for a region. Modes that test knowledge of
// names hide regions the player has not found yet.
func TooltipLabel(mode Mode, r *atlas.Region) string {
	if r == nil {
		return ""
	}
	switch mode {
	case ModeNameAll:
		if !r.Named {
			return hiddenLabel
		}
	case ModePath:
		if !r.IsStart && !r.IsEnd && !r.Selected {
			return hiddenLabel
		}
	}
	return r.Name
}
