package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	feedbackPanelWidth = 340
	feedbackMaxEntries = 40
	feedbackVisible    = 6
	feedbackFontSize   = 14
)

type feedbackKind uint8

const (
	feedbackInfo feedbackKind = iota
	feedbackGood
	feedbackBad
)

func (k feedbackKind) color() color.RGBA {
	switch k {
	case feedbackGood:
		return color.RGBA{R: 120, G: 230, B: 140, A: 255}
	case feedbackBad:
		return color.RGBA{R: 255, G: 120, B: 110, A: 255}
	}
	return color.RGBA{R: 220, G: 220, B: 230, A: 255}
}

// FeedbackEntry is one line of player feedback.
type FeedbackEntry struct {
	Seq     int
	Kind    feedbackKind
	Message string
}

// FeedbackLog is a ring buffer of feedback lines shown under the HUD.
type FeedbackLog struct {
	entries []FeedbackEntry
	head    int
	count   int
	seq     int
}

func NewFeedbackLog() *FeedbackLog {
	return &FeedbackLog{entries: make([]FeedbackEntry, feedbackMaxEntries)}
}

// Add appends a line, evicting the oldest when full.
func (fl *FeedbackLog) Add(kind feedbackKind, msg string) {
	fl.seq++
	fl.entries[fl.head] = FeedbackEntry{Seq: fl.seq, Kind: kind, Message: msg}
	fl.head = (fl.head + 1) % feedbackMaxEntries
	if fl.count < feedbackMaxEntries {
		fl.count++
	}
}

// Recent returns entries oldest first.
func (fl *FeedbackLog) Recent() []FeedbackEntry {
	out := make([]FeedbackEntry, fl.count)
	for i := 0; i < fl.count; i++ {
		idx := (fl.head - fl.count + i + feedbackMaxEntries) % feedbackMaxEntries
		out[i] = fl.entries[idx]
	}
	return out
}

// Last returns the newest entry.
func (fl *FeedbackLog) Last() (FeedbackEntry, bool) {
	if fl.count == 0 {
		return FeedbackEntry{}, false
	}
	return fl.entries[(fl.head-1+feedbackMaxEntries)%feedbackMaxEntries], true
}

func (fl *FeedbackLog) Clear() {
	fl.head, fl.count = 0, 0
}

// Draw renders the newest lines in a panel anchored at the bottom-left
// corner. scale is the device pixel ratio.
func (fl *FeedbackLog) Draw(dst *ebiten.Image, ui *fonts, x, bottom, scale float64) {
	entries := fl.Recent()
	if len(entries) == 0 {
		return
	}
	if len(entries) > feedbackVisible {
		entries = entries[len(entries)-feedbackVisible:]
	}
	lh := ui.lineHeight(feedbackFontSize * scale)
	w := float32(feedbackPanelWidth * scale)
	h := float32(lh*float64(len(entries)) + 8*scale)
	top := float32(bottom) - h
	vector.FillRect(dst, float32(x), top, w, h, color.RGBA{R: 10, G: 10, B: 20, A: 200}, false)
	vector.StrokeLine(dst, float32(x), top, float32(x)+w, top, float32(scale), color.RGBA{R: 70, G: 70, B: 110, A: 255}, false)

	y := float64(top) + 4*scale
	for i, e := range entries {
		k := e.Kind.color()
		var c color.Color = k
		// Older lines fade.
		if i < len(entries)-2 {
			c = color.NRGBA{R: k.R, G: k.G, B: k.B, A: 150}
		}
		ui.print(dst, e.Message, x+8*scale, y, feedbackFontSize*scale, false, c)
		y += lh
	}
}
