package graph

func New() *Graph {
	return &Graph{
		edges:      make(map[string][]string),
		starting:   make(map[string]bool),
		terminal:   make(map[string]bool),
		validNodes: make(map[string]bool),
	}
}

// Graph tracks the directed status graph of a workflow definition and infers
// the starting and terminal nodes from the declared transitions.
type Graph struct {
	edges      map[string][]string
	nodeOrder  []string
	starting   map[string]bool
	terminal   map[string]bool
	validNodes map[string]bool
}

func (g *Graph) AddTransition(from string, to string) {
	if _, ok := g.validNodes[from]; !ok {
		g.nodeOrder = append(g.nodeOrder, from)
	}

	if _, ok := g.validNodes[to]; !ok && from != to {
		g.nodeOrder = append(g.nodeOrder, to)
	}

	// Nodes that are reached via another node are never considered starting nodes
	g.starting[to] = false

	// Only mark the origin node ("from") as a starting node if it's never been marked as false
	if _, ok := g.starting[from]; !ok {
		g.starting[from] = true
	}

	// If the destination has no edges of its own yet then it is terminal until proven otherwise
	if _, ok := g.edges[to]; !ok {
		g.terminal[to] = true
	}

	// Declaring an outgoing edge overrides any previous terminal marking
	g.terminal[from] = false

	g.edges[from] = append(g.edges[from], to)

	g.validNodes[from] = true
	g.validNodes[to] = true
}

func (g *Graph) IsTerminal(node string) bool {
	return g.terminal[node]
}

func (g *Graph) Transitions(node string) []string {
	return g.edges[node]
}

func (g *Graph) IsValid(node string) bool {
	return g.validNodes[node]
}

type Transition struct {
	From string
	To   string
}

type Info struct {
	StartingNodes []string
	TerminalNodes []string
	Transitions   []Transition
}

func (g *Graph) Info() Info {
	var i Info
	for _, node := range g.nodeOrder {
		if transitions, ok := g.edges[node]; ok {
			for _, to := range transitions {
				i.Transitions = append(i.Transitions, Transition{
					From: node,
					To:   to,
				})
			}
		}

		if valid, ok := g.starting[node]; ok && valid {
			i.StartingNodes = append(i.StartingNodes, node)
		}

		if valid, ok := g.terminal[node]; ok && valid {
			i.TerminalNodes = append(i.TerminalNodes, node)
		}
	}

	return i
}
