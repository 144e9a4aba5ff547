package main

import (
	"log"

	"gridchase/internal/config"
	"gridchase/internal/game"
	"gridchase/internal/grid"
	"gridchase/internal/simulation"
	"gridchase/internal/threading"
	"gridchase/internal/watch"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	// Load configuration
	cfg := config.MustLoadConfig("config.yaml")

	data, mapPath, err := grid.LoadMapOrArena(cfg.Map.File)
	if err != nil {
		log.Printf("Warning: Failed to load map: %v, using built-in arena", err)
	}

	components := threading.NewComponents(cfg.GetWorkers())
	defer components.Shutdown()

	world, err := simulation.NewWorld(cfg, data, components)
	if err != nil {
		log.Fatal(err)
	}

	var watcher *watch.MapWatcher
	if cfg.Map.Watch && mapPath != "" {
		watcher, err = watch.NewMapWatcher(mapPath, watch.DefaultDebounce)
		if err != nil {
			log.Printf("Warning: Failed to watch map file: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	// Set window properties from config
	ebiten.SetWindowSize(cfg.Display.ScreenWidth, cfg.Display.ScreenHeight)
	ebiten.SetWindowTitle(cfg.Display.WindowTitle)
	ebiten.SetTPS(cfg.GetTPS())

	g := game.NewChaseGame(cfg, world, components, watcher)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
