package engine

import (
	"context"
	"log/slog"

	"github.com/user/nessus-rider/pkg/nessus"
	"github.com/user/nessus-rider/pkg/telemetry"
)

// ScanSource is the part of the Nessus client the aggregator reads from.
type ScanSource interface {
	FetchScan(ctx context.Context, scanID string) (*nessus.ScanDetail, error)
	FetchPluginDetail(ctx context.Context, scanID string, pluginID int) (*nessus.PluginDetail, error)
}

// Aggregator folds the plugin details of several scans into one FindingGraph.
type Aggregator struct {
	Source  ScanSource
	Metrics *telemetry.Metrics
}

type pluginRef struct {
	scanID   string
	pluginID int
}

// Run fetches every scan in order, then every plugin detail in scan order.
// Fetch and validation failures are logged and the fragment is dropped, so
// the graph may be partial. Only context cancellation stops the run early.
func (a *Aggregator) Run(ctx context.Context, scanIDs []string) *FindingGraph {
	var refs []pluginRef
	for _, scanID := range scanIDs {
		if ctx.Err() != nil {
			break
		}
		scan, err := a.Source.FetchScan(ctx, scanID)
		if err != nil {
			telemetry.LogError("Failed to fetch scan", err, "scan_id", scanID)
			continue
		}
		slog.Info("Fetched scan", "scan_id", scanID, "name", scan.Info.Name, "plugins", len(scan.Vulnerabilities))
		for _, v := range scan.Vulnerabilities {
			refs = append(refs, pluginRef{scanID: scanID, pluginID: v.PluginID})
		}
	}

	g := NewFindingGraph()
	for _, ref := range refs {
		if ctx.Err() != nil {
			slog.Warn("Aggregation interrupted", "err", ctx.Err())
			break
		}
		detail, err := a.Source.FetchPluginDetail(ctx, ref.scanID, ref.pluginID)
		if err != nil {
			telemetry.LogError("Failed to fetch plugin detail", err, "scan_id", ref.scanID, "plugin_id", ref.pluginID)
			continue
		}
		merged := g.AddFragment(detail)
		a.Metrics.FragmentFolded()
		slog.Debug("Folded plugin fragment", "scan_id", ref.scanID, "plugin_id", ref.pluginID, "merged", merged)
	}

	slog.Info("Aggregation complete", "scans", len(scanIDs), "fragments", len(refs), "findings", g.Len())
	return g
}
