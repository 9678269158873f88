package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/user/nessus-rider/pkg/nessus"
)

// FindingGraph holds one AggregatedFinding per plugin id in first-seen order.
type FindingGraph struct {
	findings []*AggregatedFinding
	index    map[string]int
	mu       sync.RWMutex
}

func NewFindingGraph() *FindingGraph {
	return &FindingGraph{index: make(map[string]int)}
}

// AddFragment folds one scan's plugin detail into the graph. Outputs of a
// known plugin are appended; the first fragment's description is kept.
// It reports whether the fragment was merged into an existing finding.
func (g *FindingGraph) AddFragment(d *nessus.PluginDetail) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := string(d.Info.PluginDescription.PluginID)
	if i, ok := g.index[id]; ok {
		g.findings[i].Outputs = append(g.findings[i].Outputs, d.Outputs...)
		return true
	}

	f := &AggregatedFinding{Info: d.Info}
	f.Outputs = append(f.Outputs, d.Outputs...)
	g.index[id] = len(g.findings)
	g.findings = append(g.findings, f)
	return false
}

// Findings returns the aggregated findings in aggregation order.
func (g *FindingGraph) Findings() []*AggregatedFinding {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*AggregatedFinding, len(g.findings))
	copy(out, g.findings)
	return out
}

func (g *FindingGraph) Get(pluginID string) (*AggregatedFinding, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i, ok := g.index[pluginID]
	if !ok {
		return nil, false
	}
	return g.findings[i], true
}

func (g *FindingGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.findings)
}

// OutputCount is the total number of outputs across all findings.
func (g *FindingGraph) OutputCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, f := range g.findings {
		n += len(f.Outputs)
	}
	return n
}

// GetReport returns a text summary of the graph
func (g *FindingGraph) GetReport() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Aggregated findings (%d plugins):\n", len(g.findings)))
	sb.WriteString("--------------------------------------------------\n")
	for _, f := range g.findings {
		pd := f.Plugin()
		sb.WriteString(fmt.Sprintf("[%d] %s (plugin %s, %d outputs)\n", pd.Severity, pd.PluginName, pd.PluginID, len(f.Outputs)))
	}
	return sb.String()
}

// SaveSnapshot writes the aggregated findings as an indented JSON array.
func (g *FindingGraph) SaveSnapshot(path string) error {
	g.mu.RLock()
	findings := append([]*AggregatedFinding{}, g.findings...)
	data, err := json.MarshalIndent(findings, "", "    ")
	g.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot rebuilds a graph from a file written by SaveSnapshot.
func LoadSnapshot(path string) (*FindingGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var findings []*AggregatedFinding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	g := NewFindingGraph()
	for _, f := range findings {
		g.AddFragment(&nessus.PluginDetail{Info: f.Info, Outputs: f.Outputs})
	}
	return g, nil
}
