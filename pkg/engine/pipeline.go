package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/user/nessus-rider/pkg/ghostwriter"
	"github.com/user/nessus-rider/pkg/telemetry"
)

// ProgressFunc is called after every processed finding.
type ProgressFunc func(done, total int, title string)

// Pipeline formats aggregated findings and ranks them for submission.
type Pipeline struct {
	Formatter *Formatter
	Progress  ProgressFunc
	Metrics   *telemetry.Metrics
}

// Run formats every finding in aggregation order. Findings that cannot be
// formatted are logged and skipped; the rest are returned ranked by CVSS.
func (p *Pipeline) Run(ctx context.Context, findings []*AggregatedFinding) []ghostwriter.Finding {
	out := make([]ghostwriter.Finding, 0, len(findings))
	for i, af := range findings {
		title := af.Plugin().PluginName
		gf, err := p.Formatter.Format(ctx, af)
		switch {
		case errors.Is(err, ErrBelowThreshold):
			p.Metrics.FindingResult("skipped")
		case err != nil:
			telemetry.LogError("Failed to format finding, skipping", err, "plugin_id", af.PluginID(), "name", title)
			p.Metrics.FindingResult("failed")
		default:
			out = append(out, gf)
			p.Metrics.FindingResult("formatted")
		}
		if p.Progress != nil {
			p.Progress(i+1, len(findings), title)
		}
	}

	Rank(out)
	slog.Info("Findings ready", "total", len(findings), "formatted", len(out))
	return out
}

// Rank sorts by CVSS score, highest first, keeping input order on ties,
// and numbers positions from 1.
func Rank(findings []ghostwriter.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].CVSSScore > findings[j].CVSSScore
	})
	for i := range findings {
		findings[i].Position = i + 1
	}
}
