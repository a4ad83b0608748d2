package mapview

import (
	"image/color"

	"github.com/Garsondee/GeoQuizz/internal/atlas"
)

// Style selects which region flags drive the fill colour.
type Style uint8

const (
	StylePlain Style = iota
	StylePath
	StyleNameAll
)

// Palette is the full set of map and overlay colours.
type Palette struct {
	Background color.RGBA
	Default    color.RGBA
	Highlight  color.RGBA
	Start      color.RGBA
	End        color.RGBA
	Hover      color.RGBA
	Named      color.RGBA
	Border     color.RGBA

	PlayerPin  color.RGBA
	TargetPin  color.RGBA
	PinOutline color.RGBA
	Connector  color.RGBA

	HighContrast bool
}

func rgb(hex uint32) color.RGBA {
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

// DefaultPalette is the standard look.
func DefaultPalette() Palette {
	return Palette{
		Background: rgb(0x4a3a7a),
		Default:    rgb(0x55d6c2),
		Highlight:  rgb(0xff6b6b),
		Start:      rgb(0x55d688),
		End:        rgb(0x55d6c2),
		Hover:      rgb(0xffcc66),
		Named:      rgb(0xffcc00),
		Border:     rgb(0x000000),
		PlayerPin:  rgb(0xff3333),
		TargetPin:  rgb(0x33cc33),
		PinOutline: rgb(0xffffff),
		Connector:  rgb(0xffffff),
	}
}

// HighContrastPalette swaps region colours for strongly separated ones.
func HighContrastPalette() Palette {
	return Palette{
		Background:   rgb(0x000000),
		Default:      rgb(0xffffff),
		Highlight:    rgb(0xff00ff),
		Start:        rgb(0x00ff00),
		End:          rgb(0x00ffff),
		Hover:        rgb(0xffff00),
		Named:        rgb(0xffff00),
		Border:       rgb(0x000000),
		PlayerPin:    rgb(0xff0000),
		TargetPin:    rgb(0x00ff00),
		PinOutline:   rgb(0xffffff),
		Connector:    rgb(0xffff00),
		HighContrast: true,
	}
}

// Base is the colour of a region with no game state.
func (p Palette) Base(r *atlas.Region) color.RGBA {
	if r.HasFill && !p.HighContrast {
		return r.Fill
	}
	return p.Default
}

// Fill returns the visible colour of a region for a mode style.
func (p Palette) Fill(r *atlas.Region, s Style) color.RGBA {
	switch s {
	case StyleNameAll:
		if r.Named {
			return p.Named
		}
	case StylePath:
		switch {
		case r.IsStart:
			return p.Start
		case r.IsEnd:
			return p.End
		case r.Selected:
			return p.Highlight
		}
	}
	return p.Base(r)
}

// FillFunc binds the palette to a style.
func (p Palette) FillFunc(s Style) FillFunc {
	return func(r *atlas.Region) color.RGBA { return p.Fill(r, s) }
}
