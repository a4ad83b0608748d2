package main

import (
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/GeoQuizz/internal/assets"
	"github.com/Garsondee/GeoQuizz/internal/config"
	"github.com/Garsondee/GeoQuizz/internal/game"
	"github.com/Garsondee/GeoQuizz/internal/scores"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger(os.Stderr)
	for _, w := range cfg.Warnings {
		logger.Warn("config", "issue", w)
	}

	// Scores fall back to memory so the game stays playable without a disk.
	var store scores.Store = scores.NewMemory()
	if db, err := scores.Open(cfg.DBPath, logger); err != nil {
		logger.Warn("score_store_unavailable", "path", cfg.DBPath, "err", err)
	} else {
		store = db
	}
	defer store.Close()

	ebiten.SetWindowTitle("GeoQuizz")
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	g := game.New(cfg, game.Deps{
		Data:   assets.Open(cfg.DataDir),
		Store:  store,
		Logger: logger,
	})
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
