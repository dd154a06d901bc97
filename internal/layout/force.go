package layout

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/kinshiphq/kinship/internal/graph"
)

// Force simulation tuning. These mirror the social-graph rendering defaults:
// a gentle pull toward the canvas center, short-range pairwise repulsion and
// springs driving connected nodes toward a fixed separation.
const (
	centerPull        = 0.01  // centering force coefficient
	repulsionRadius   = 100.0 // px; nodes farther apart do not repel
	repulsionStrength = 800.0 // numerator of the 1/d² repulsion
	springLength      = 80.0  // px; target separation of connected nodes
	springStrength    = 0.02  // spring force per px of stretch
	damping           = 0.9   // velocity retained per tick

	radiusMin = 8.0
	radiusMax = 20.0
)

// ForceNode is the simulation state for one node. The simulation owns its
// node buffer exclusively; renderers only ever see copies.
type ForceNode struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	IsRoot   bool    `json:"is_root,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"-"`
	VY       float64 `json:"-"`
	Radius   float64 `json:"radius"`
	Strength int     `json:"strength,omitempty"`
}

// ForceConfig configures a Simulation.
type ForceConfig struct {
	Canvas Config

	// ConvergenceEnergy, when positive, stops the run loop once total
	// kinetic energy stays below it for ConvergenceTicks consecutive
	// ticks. Zero disables convergence; the loop then runs until the
	// context is canceled or Stop is called. Convergence is an
	// optimization, not a correctness requirement.
	ConvergenceEnergy float64
	ConvergenceTicks  int
}

// Simulation is a single-owner force-directed layout over a social graph.
// Tick is safe to call concurrently with Drag/Release and Snapshot; all
// node state lives behind the simulation's lock and is never aliased out.
type Simulation struct {
	mu      sync.Mutex
	cfg     ForceConfig
	nodes   []ForceNode
	index   map[string]int
	springs [][2]int // node index pairs, one per visual edge
	dragged map[string]bool

	calmTicks int
	stop      chan struct{}
	stopOnce  sync.Once
}

// NodeRadius derives a node's render radius from its relationship strength,
// clamped to [8,20]. Unset strength lands mid-scale.
func NodeRadius(strength int) float64 {
	if strength == 0 {
		strength = 5
	}
	return clamp(radiusMin+float64(strength), radiusMin, radiusMax)
}

// NewSimulation seeds a simulation from a built graph. The root starts at
// the canvas center and neighbors on a ring around it, so identical graphs
// seed identically.
func NewSimulation(g *graph.Graph, cfg ForceConfig) *Simulation {
	cfg.Canvas = cfg.Canvas.normalized()

	s := &Simulation{
		cfg:     cfg,
		index:   make(map[string]int, len(g.Nodes)),
		dragged: map[string]bool{},
		stop:    make(chan struct{}),
	}

	cx, cy := cfg.Canvas.Width/2, cfg.Canvas.Height/2
	ring := math.Min(cfg.Canvas.Width, cfg.Canvas.Height) / 4

	others := 0
	for _, n := range g.Nodes {
		fn := ForceNode{
			ID:       n.ID,
			Name:     n.Name,
			IsRoot:   n.IsRoot,
			Radius:   NodeRadius(n.Strength),
			Strength: n.Strength,
		}
		if n.IsRoot {
			fn.X, fn.Y = cx, cy
		} else {
			angle := 2 * math.Pi * float64(others) / float64(max(len(g.Nodes)-1, 1))
			fn.X = cx + ring*math.Cos(angle)
			fn.Y = cy + ring*math.Sin(angle)
			others++
		}
		s.index[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, fn)
	}

	for _, e := range g.Edges {
		si, ok1 := s.index[e.SourceID]
		ti, ok2 := s.index[e.TargetID]
		if ok1 && ok2 {
			s.springs = append(s.springs, [2]int{si, ti})
		}
	}

	return s
}

// Tick advances the simulation one step: accumulate centering, repulsion
// and spring forces into velocities, damp, integrate, and clamp positions
// inside the canvas minus each node's radius. Dragged nodes are skipped
// entirely; their position is driven externally.
func (s *Simulation) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg.Canvas
	cx, cy := cfg.Width/2, cfg.Height/2

	for i := range s.nodes {
		n := &s.nodes[i]
		if s.dragged[n.ID] {
			n.VX, n.VY = 0, 0
			continue
		}

		// Centering force, proportional to distance from canvas center.
		n.VX += (cx - n.X) * centerPull
		n.VY += (cy - n.Y) * centerPull

		// Pairwise repulsion inside the interaction radius.
		for j := range s.nodes {
			if i == j {
				continue
			}
			o := &s.nodes[j]
			dx, dy := n.X-o.X, n.Y-o.Y
			distSq := dx*dx + dy*dy
			if distSq == 0 {
				// Coincident nodes get a fixed nudge apart.
				n.VX += 1
				continue
			}
			dist := math.Sqrt(distSq)
			if dist >= repulsionRadius {
				continue
			}
			force := repulsionStrength / distSq
			n.VX += dx / dist * force
			n.VY += dy / dist * force
		}
	}

	// Spring forces along edges, applied to both endpoints.
	for _, spring := range s.springs {
		a := &s.nodes[spring[0]]
		b := &s.nodes[spring[1]]
		dx, dy := b.X-a.X, b.Y-a.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			continue
		}
		force := (dist - springLength) * springStrength
		fx := dx / dist * force
		fy := dy / dist * force
		if !s.dragged[a.ID] {
			a.VX += fx
			a.VY += fy
		}
		if !s.dragged[b.ID] {
			b.VX -= fx
			b.VY -= fy
		}
	}

	// Damp, integrate, contain.
	for i := range s.nodes {
		n := &s.nodes[i]
		if s.dragged[n.ID] {
			continue
		}
		n.VX *= damping
		n.VY *= damping
		n.X = clamp(n.X+n.VX, n.Radius, cfg.Width-n.Radius)
		n.Y = clamp(n.Y+n.VY, n.Radius, cfg.Height-n.Radius)
	}
}

// Energy returns the total kinetic energy of the simulation, the quantity
// the optional convergence check watches.
func (s *Simulation) Energy() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.energyLocked()
}

func (s *Simulation) energyLocked() float64 {
	var e float64
	for i := range s.nodes {
		e += s.nodes[i].VX*s.nodes[i].VX + s.nodes[i].VY*s.nodes[i].VY
	}
	return e
}

// Drag marks a node as externally driven and moves it. While dragged, the
// node's velocity is zeroed and physics never fights the user's hand; a
// node is either dragged or simulated in a given tick, never both.
func (s *Simulation) Drag(id string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	n := &s.nodes[i]
	s.dragged[id] = true
	n.VX, n.VY = 0, 0
	n.X = clamp(x, n.Radius, s.cfg.Canvas.Width-n.Radius)
	n.Y = clamp(y, n.Radius, s.cfg.Canvas.Height-n.Radius)
	return true
}

// Release returns a dragged node to the simulation.
func (s *Simulation) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dragged, id)
}

// Snapshot returns a copy of the node states for rendering. The returned
// slice shares nothing with the simulation's own buffer.
func (s *Simulation) Snapshot() []ForceNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ForceNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Size returns the number of simulated nodes.
func (s *Simulation) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Run drives ticks at the given interval until the context is canceled,
// Stop is called, or (when configured) the simulation converges. Each tick
// completes, and onTick observes its snapshot, before the next tick is
// scheduled. onTick may be nil.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, onTick func([]ForceNode)) {
	if interval <= 0 {
		interval = time.Second / 30
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.Tick()
			if onTick != nil {
				onTick(s.Snapshot())
			}
			if s.converged() {
				return
			}
		}
	}
}

// Stop halts a running loop. No further ticks fire after Stop returns and
// the loop observes the signal.
func (s *Simulation) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// converged applies the optional kinetic-energy threshold.
func (s *Simulation) converged() bool {
	if s.cfg.ConvergenceEnergy <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.energyLocked() < s.cfg.ConvergenceEnergy {
		s.calmTicks++
	} else {
		s.calmTicks = 0
	}
	ticks := s.cfg.ConvergenceTicks
	if ticks <= 0 {
		ticks = 10
	}
	return s.calmTicks >= ticks
}
