package graph

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	// ErrDuplicateNode is returned when a node ID is added twice.
	ErrDuplicateNode = errors.New("graph: duplicate node id")
	// ErrUnknownNode is returned when a connection references a missing node.
	ErrUnknownNode = errors.New("graph: unknown node")
	// ErrCycle is returned when the graph contains a cycle that does not pass
	// through a delay node.
	ErrCycle = errors.New("graph: cycle without delay")
	// ErrFeedbackWithoutDelay is returned when a feedback connection does not
	// originate downstream of a delay node.
	ErrFeedbackWithoutDelay = errors.New("graph: feedback connection without upstream delay")
	// ErrNoOutput is returned when Compile runs before SetOutput.
	ErrNoOutput = errors.New("graph: no output node")
	// ErrNotCompiled is returned when rendering is requested before Compile.
	ErrNotCompiled = errors.New("graph: not compiled")
)

// Connection is a directed edge between two nodes. Feedback marks the edge
// that intentionally closes a loop.
type Connection struct {
	From     string
	To       string
	Feedback bool
}

// NodeInfo describes a node for inspection.
type NodeInfo struct {
	ID     string
	Kind   Kind
	Params map[string]float64
}

// Description is the adjacency description of a graph: its nodes in
// insertion order, its connections, and the compiled processing order.
type Description struct {
	Nodes       []NodeInfo
	Connections []Connection
	Order       []string
	Output      string
}

type compiled struct {
	order    []string // processing order, cycle breakers excluded
	breakers []cycleBreaker
	incoming map[string][]string
	out      map[string]Bus
	in       Bus
}

// Graph is a directed audio-processing graph rendered in quanta.
//
// All methods are safe for concurrent use. Render holds the graph lock for
// one quantum at a time; Update runs a function between quanta.
type Graph struct {
	mu sync.Mutex

	sampleRate float64
	nodes      map[string]Node
	ids        []string
	conns      []Connection
	output     string

	c *compiled

	pending    Bus
	pendingPos int
}

// New creates an empty graph at the given sample rate.
func New(sampleRate float64) (*Graph, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("graph sample rate must be positive and finite: %f", sampleRate)
	}
	return &Graph{
		sampleRate: sampleRate,
		nodes:      make(map[string]Node),
		pending:    NewBus(Quantum),
		pendingPos: Quantum,
	}, nil
}

// SampleRate returns the graph sample rate in Hz.
func (g *Graph) SampleRate() float64 {
	return g.sampleRate
}

// Add registers nodes with the graph. Adding invalidates the compiled order.
func (g *Graph) Add(nodes ...Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range nodes {
		if _, ok := g.nodes[n.ID()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID())
		}
		g.nodes[n.ID()] = n
		g.ids = append(g.ids, n.ID())
	}
	g.c = nil
	return nil
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[id]
}

// Connect adds a forward edge from -> to.
func (g *Graph) Connect(from, to string) error {
	return g.connect(Connection{From: from, To: to})
}

// ConnectFeedback adds an edge that closes a loop. The loop must pass through
// a delay node; Compile rejects it otherwise.
func (g *Graph) ConnectFeedback(from, to string) error {
	return g.connect(Connection{From: from, To: to, Feedback: true})
}

func (g *Graph) connect(c Connection) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[c.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, c.From)
	}
	if _, ok := g.nodes[c.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, c.To)
	}
	for _, existing := range g.conns {
		if existing.From == c.From && existing.To == c.To {
			return nil
		}
	}
	g.conns = append(g.conns, c)
	g.c = nil
	return nil
}

// SetOutput selects the node whose output Render returns.
func (g *Graph) SetOutput(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	g.output = id
	g.c = nil
	return nil
}

// Compile validates the topology and computes the processing order.
//
// Edges into delay nodes are excluded from the ordering: a delay produces its
// output at the start of a quantum from samples written in earlier quanta and
// consumes its input after every other node has run. Any cycle that remains
// after removing those edges is reported as ErrCycle.
func (g *Graph) Compile() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.compileLocked()
}

func (g *Graph) compileLocked() error {
	if g.output == "" {
		return ErrNoOutput
	}

	incoming := make(map[string][]string, len(g.nodes))
	outgoing := make(map[string][]string, len(g.nodes))
	indegree := make(map[string]int, len(g.nodes))
	for _, id := range g.ids {
		indegree[id] = 0
	}

	for _, c := range g.conns {
		incoming[c.To] = append(incoming[c.To], c.From)
		if _, ok := g.nodes[c.To].(cycleBreaker); ok {
			continue
		}
		outgoing[c.From] = append(outgoing[c.From], c.To)
		indegree[c.To]++
	}

	for _, c := range g.conns {
		if c.Feedback && !g.reachesBreaker(c.From, incoming) {
			return fmt.Errorf("%w: %s -> %s", ErrFeedbackWithoutDelay, c.From, c.To)
		}
	}

	queue := make([]string, 0, len(g.ids))
	for _, id := range g.ids {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		order = append(order, id)
		for _, to := range outgoing[id] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) != len(g.ids) {
		return ErrCycle
	}

	c := &compiled{
		order:    make([]string, 0, len(order)),
		incoming: incoming,
		out:      make(map[string]Bus, len(order)),
		in:       NewBus(Quantum),
	}
	for _, id := range order {
		c.out[id] = NewBus(Quantum)
		if b, ok := g.nodes[id].(cycleBreaker); ok {
			c.breakers = append(c.breakers, b)
			continue
		}
		c.order = append(c.order, id)
	}

	g.c = c
	return nil
}

// reachesBreaker walks the inputs of id backwards looking for a delay node.
func (g *Graph) reachesBreaker(id string, incoming map[string][]string) bool {
	seen := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if _, ok := g.nodes[cur].(cycleBreaker); ok {
			return true
		}
		stack = append(stack, incoming[cur]...)
	}
	return false
}

// Update runs fn while no quantum is being rendered. Parameter writes made inside
// fn become audible together at the next quantum.
func (g *Graph) Update(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

// Render fills dst with interleaved stereo frames from the output node.
// Frames are produced in whole quanta; a partial quantum is kept for the next
// call. An uncompiled graph renders silence.
func (g *Graph) Render(dst [][2]float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.c == nil {
		for i := range dst {
			dst[i] = [2]float64{}
		}
		return
	}

	for i := range dst {
		if g.pendingPos >= Quantum {
			g.renderQuantum()
			g.pendingPos = 0
		}
		dst[i] = [2]float64{g.pending[0][g.pendingPos], g.pending[1][g.pendingPos]}
		g.pendingPos++
	}
}

// RenderQuantum renders exactly one quantum into out.
func (g *Graph) RenderQuantum(out Bus) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.c == nil {
		return ErrNotCompiled
	}
	g.renderQuantum()
	out.CopyFrom(g.pending)
	g.pendingPos = Quantum
	return nil
}

func (g *Graph) renderQuantum() {
	c := g.c

	for _, b := range c.breakers {
		b.read(c.out[b.ID()])
	}

	for _, id := range c.order {
		g.mixInputs(id)
		g.nodes[id].Process(c.in, c.out[id])
	}

	for _, b := range c.breakers {
		g.mixInputs(b.ID())
		b.write(c.in)
	}

	g.pending.CopyFrom(c.out[g.output])
}

func (g *Graph) mixInputs(id string) {
	c := g.c
	c.in.Zero()
	for _, from := range c.incoming[id] {
		c.in.Accumulate(c.out[from])
	}
}

// Describe returns the adjacency description and current parameter values.
func (g *Graph) Describe() Description {
	g.mu.Lock()
	defer g.mu.Unlock()

	d := Description{
		Connections: append([]Connection(nil), g.conns...),
		Output:      g.output,
	}
	for _, id := range g.ids {
		n := g.nodes[id]
		info := NodeInfo{ID: id, Kind: n.Kind()}
		if p, ok := n.(Parameterized); ok {
			info.Params = make(map[string]float64)
			for _, param := range p.Params() {
				info.Params[param.Name()] = param.Value()
			}
		}
		d.Nodes = append(d.Nodes, info)
	}
	if g.c != nil {
		for _, b := range g.c.breakers {
			d.Order = append(d.Order, b.ID())
		}
		d.Order = append(d.Order, g.c.order...)
	}
	return d
}
