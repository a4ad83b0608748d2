package game

import (
	"encoding/json"
	"math"

	"github.com/atotto/clipboard"
)

// pinCoord is the clipboard form of a pin, handy for authoring place data.
type pinCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func coordJSON(x, y float64) string {
	b, _ := json.Marshal(pinCoord{X: int(math.Round(x)), Y: int(math.Round(y))})
	return string(b)
}

func setClipboardText(text string) error {
	if text == "" {
		text = " "
	}
	return clipboard.WriteAll(text)
}

// copyPin puts the last pin's map coordinate on the clipboard.
func (g *Game) copyPin() {
	s := coordJSON(g.lastPin[0], g.lastPin[1])
	if err := setClipboardText(s); err != nil {
		g.logger.Warn("clipboard_unavailable", "err", err)
		g.feedback.Add(feedbackBad, "Clipboard unavailable: "+s)
		return
	}
	g.feedback.Add(feedbackInfo, "Copied "+s)
}
