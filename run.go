package bramble

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	ClearColor Color
	ShowFPS    bool
}

// Run opens a window and drives the graph's update and draw loop until the
// window closes. The first registered surface is presented; when the graph
// has none, a surface named "main" is created at the window size. Blocks
// until the loop ends.
func Run(g *Graph, cfg RunConfig) error {
	if g == nil {
		return errors.New("bramble: Run with nil graph")
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Title == "" {
		cfg.Title = "bramble"
	}
	if cfg.ClearColor.A == 0 {
		cfg.ClearColor = Color{R: 0.09, G: 0.10, B: 0.12, A: 1}
	}

	if len(g.surfaceOrder) == 0 {
		g.AddSurface("main", float64(cfg.Width), float64(cfg.Height))
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)

	return ebiten.RunGame(&gameAdapter{
		graph:     g,
		surfaceID: g.surfaceOrder[0],
		config:    cfg,
	})
}

// gameAdapter implements ebiten.Game on top of a Graph.
type gameAdapter struct {
	graph     *Graph
	surfaceID string
	config    RunConfig
}

func (a *gameAdapter) Update() error {
	a.graph.Update()
	return nil
}

func (a *gameAdapter) Draw(screen *ebiten.Image) {
	screen.Fill(a.config.ClearColor.toRGBA())
	a.graph.Draw(a.surfaceID, screen)
	if a.config.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f",
			ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.config.Width, a.config.Height
}
