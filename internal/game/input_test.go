package game

import (
	"testing"

	"github.com/Garsondee/GeoQuizz/internal/mapview"
)

// --- Text box ---

func TestTextBox_InsertRespectsLimit(t *testing.T) {
	b := textBox{limit: 5}
	b.Insert([]rune("France"))
	if b.String() != "Franc" {
		t.Fatalf("expected the limit to cut input, got %q", b.String())
	}
	b.Insert([]rune("e"))
	if b.String() != "Franc" {
		t.Fatalf("full box should ignore input, got %q", b.String())
	}
}

func TestTextBox_DropsControlRunes(t *testing.T) {
	var b textBox
	b.Insert([]rune("Cô\tte\x00 d'Ivoire\n"))
	if b.String() != "Côte d'Ivoire" {
		t.Fatalf("unexpected text %q", b.String())
	}
}

func TestTextBox_BackspaceRemovesRunes(t *testing.T) {
	var b textBox
	b.Backspace()
	b.Insert([]rune("Perú"))
	b.Backspace()
	if b.String() != "Per" {
		t.Fatalf("backspace should remove a whole rune, got %q", b.String())
	}
}

func TestTextBox_TakeTrimsAndClears(t *testing.T) {
	b := textBox{limit: inputLimit}
	b.Insert([]rune("  Chile  "))
	if got := b.Take(); got != "Chile" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
	if b.String() != "" {
		t.Fatalf("take should empty the box, got %q", b.String())
	}
	b.Insert([]rune("x"))
	if b.String() != "x" {
		t.Fatalf("box should be reusable after take, got %q", b.String())
	}
}

// --- Pin focus ---

func TestPinFocus_OnlyWhenTargetOffScreen(t *testing.T) {
	vp := mapview.NewViewport()
	vp.Fit(800, 400, 1000, 500)
	if _, _, ok := pinFocus(&vp, 100, 100, 900, 400, 800, 400); ok {
		t.Fatal("a visible target needs no recentring")
	}
	vp.ApplyZoom(100, 0, 0)
	x, y, ok := pinFocus(&vp, 100, 100, 900, 400, 800, 400)
	if !ok || x != 500 || y != 250 {
		t.Fatalf("expected the midpoint 500,250, got %v,%v ok=%v", x, y, ok)
	}
}
