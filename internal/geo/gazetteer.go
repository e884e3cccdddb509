package geo

import (
	"strings"
	"sync"
)

// Gazetteer resolves free-text place labels to coordinates. Itinerary entries
// reference places by label ("Hotel Taj", "Gateway of India"); the evaluator
// needs a point to compare the tourist's position against.
type Gazetteer struct {
	mu     sync.RWMutex
	places map[string]Point
}

// NewGazetteer creates an empty in-memory gazetteer.
func NewGazetteer() *Gazetteer {
	return &Gazetteer{places: make(map[string]Point)}
}

// Register associates a label with a point. Labels are matched
// case-insensitively; a later registration overwrites an earlier one.
func (g *Gazetteer) Register(label string, p Point) {
	key := normalizeLabel(label)
	if key == "" {
		return
	}
	g.mu.Lock()
	g.places[key] = p
	g.mu.Unlock()
}

// Resolve looks up the point for a label. The second return value is false
// when the label is unknown.
func (g *Gazetteer) Resolve(label string) (Point, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.places[normalizeLabel(label)]
	return p, ok
}

// Len returns the number of registered places.
func (g *Gazetteer) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.places)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
