// Package layout assigns 2D coordinates to workflow graph nodes.
//
// Two strategies exist, applied all-or-nothing per graph: when every node
// carries an authored canvas position the coordinates are a fixed affine
// transform of those positions; when even one node lacks a position the
// authored data is discarded for the whole graph and a deterministic
// force-directed layout is computed instead.
package layout

import (
	"math"
	"math/rand/v2"

	"github.com/gejjech/flowviz/pkg/graph"
)

// Point is a resolved 2D coordinate in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	// posScale divides authored canvas coordinates into layout space.
	posScale = 100.0

	// iterations bounds the force-directed simulation, capping worst-case
	// latency independent of input size.
	iterations = 50

	// spread is the ideal-distance multiplier of the force-directed
	// layout. Larger values push nodes further apart.
	spread = 2.0

	// DefaultSeed is the default seed for reproducible force-directed
	// placement.
	DefaultSeed = uint64(42)
)

// Resolve computes the coordinate overlay for a graph, keyed by node ID.
//
// If every node has an authored position, each coordinate is exactly
// (x/100, -y/100): canvas coordinates are authored top-down, layout space
// is drawn bottom-up, so the Y axis inverts. Otherwise all nodes receive
// force-directed coordinates seeded by seed. Partial use of authored
// positions is not supported.
func Resolve(g *graph.Graph, seed uint64) map[string]Point {
	if g.AllPositioned() {
		return fromAuthored(g)
	}
	return forceDirected(g, seed)
}

// fromAuthored applies the fixed affine transform to authored positions.
func fromAuthored(g *graph.Graph) map[string]Point {
	out := make(map[string]Point, g.NodeCount())
	for _, n := range g.Nodes() {
		out[n.ID] = Point{X: n.PosX / posScale, Y: -n.PosY / posScale}
	}
	return out
}

// forceDirected computes a Fruchterman-Reingold layout on the unit square.
//
// Initial placement comes from a PCG generator seeded with seed, so the
// result is fully deterministic for a given graph and seed. The iteration
// count and force constants are fixed.
func forceDirected(g *graph.Graph, seed uint64) map[string]Point {
	nodes := g.Nodes()
	n := len(nodes)
	out := make(map[string]Point, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[nodes[0].ID] = Point{}
		return out
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	pos := make([]Point, n)
	for i := range pos {
		pos[i] = Point{X: rng.Float64(), Y: rng.Float64()}
	}

	index := make(map[string]int, n)
	for i, node := range nodes {
		index[node.ID] = i
	}

	// Ideal pairwise distance for a unit-area frame.
	k := spread * math.Sqrt(1.0/float64(n))
	disp := make([]Point, n)

	// Linearly cooled temperature caps per-iteration displacement.
	temp := 0.1
	cool := temp / float64(iterations+1)

	for iter := 0; iter < iterations; iter++ {
		for i := range disp {
			disp[i] = Point{}
		}

		// Repulsion between all pairs.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy, dist := delta(pos[i], pos[j])
				f := k * k / dist
				disp[i].X += dx / dist * f
				disp[i].Y += dy / dist * f
				disp[j].X -= dx / dist * f
				disp[j].Y -= dy / dist * f
			}
		}

		// Attraction along edges. Parallel edges pull proportionally
		// harder, which is fine for a sanity-check diagram.
		for _, e := range g.Edges() {
			i, j := index[e.From], index[e.To]
			if i == j {
				continue
			}
			dx, dy, dist := delta(pos[i], pos[j])
			f := dist * dist / k
			disp[i].X -= dx / dist * f
			disp[i].Y -= dy / dist * f
			disp[j].X += dx / dist * f
			disp[j].Y += dy / dist * f
		}

		// Apply displacements, limited by the current temperature.
		for i := 0; i < n; i++ {
			d := math.Hypot(disp[i].X, disp[i].Y)
			if d == 0 {
				continue
			}
			step := math.Min(d, temp)
			pos[i].X += disp[i].X / d * step
			pos[i].Y += disp[i].Y / d * step
		}
		temp -= cool
	}

	for i, node := range nodes {
		out[node.ID] = pos[i]
	}
	return out
}

// delta returns the displacement vector and distance between two points,
// with a small epsilon to avoid division by zero for coincident nodes.
func delta(a, b Point) (dx, dy, dist float64) {
	dx = a.X - b.X
	dy = a.Y - b.Y
	dist = math.Hypot(dx, dy)
	if dist < 1e-9 {
		dist = 1e-9
	}
	return dx, dy, dist
}

// Bounds returns the bounding box of a coordinate overlay.
// Used by renderers to fit the layout into a frame. Degenerate layouts
// (single node, identical points) yield a zero-size box.
func Bounds(points map[string]Point) (minX, minY, maxX, maxY float64) {
	first := true
	for _, p := range points {
		if first {
			minX, maxX = p.X, p.X
			minY, maxY = p.Y, p.Y
			first = false
			continue
		}
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
