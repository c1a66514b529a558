// Package bramble renders branching conversation trees for [Ebitengine].
//
// Bramble takes an immutable snapshot of a conversation tree, lays it out
// top-down with parents centered over their children, and renders it as
// draggable boxes connected by curved ribbons. Re-rendering is incremental:
// elements keep their identity across renders, so tweens, hover state, and
// in-progress drags survive a data refresh.
//
// Full documentation, tutorials, and examples are available at:
//
// https://phanxgames.github.io/bramble/
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	g := bramble.New(bramble.Config{})
//	g.AddSurface("main", 1280, 720)
//
//	tree := bramble.NewTree("intro", "root", "Hello, traveler.")
//	tree.Add("root", "a", "Who are you?")
//	tree.Add("root", "b", "Goodbye.")
//	g.Render(tree, "main")
//
//	bramble.Run(g, bramble.RunConfig{Title: "Dialogue", Width: 1280, Height: 720})
//
// For full control, implement [ebiten.Game] yourself and call
// [Graph.Update] and [Graph.Draw] directly:
//
//	type Game struct{ graph *bramble.Graph }
//
//	func (g *Game) Update() error         { g.graph.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)  { g.graph.Draw("main", s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Trees and rendering
//
// The caller owns the conversation data. Each frame of interest it hands
// [Graph.Render] a fresh [Tree] snapshot; bramble diffs the snapshot's
// structure against the previous one and updates only what changed. Node
// titles are measured (with an LRU cache), word-wrapped, and centered in
// their boxes; edges become cubic ribbons with optional labels.
//
// Boxes can be dragged. A drag commits a per-node position override to the
// configured [KVStore] ([NewMemStore] for throwaway sessions, [NewFileStore]
// for persistence), and overridden positions win over the automatic layout
// on every later render of the same tree. [Graph.ResetToAutoLayout] discards
// the overrides and returns every box to its computed spot.
//
// # Key features
//
// Bramble includes a measurement cache, pluggable TTF text rendering (via
// [LoadTTFFont]), per-surface cameras with scroll-to and zoom, click and
// drag handling with a movement dead zone, scripted input playback for
// screenshot tests ([TestRunner]), PNG export, and tweened transitions
// (via [gween]).
//
// Storage, font, and callback wiring all hang off [Config]; every runtime
// failure the engine can recover from is reported as a stderr warning and
// rendering continues.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package bramble
