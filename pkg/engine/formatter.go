package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/nessus-rider/pkg/ghostwriter"
	"github.com/user/nessus-rider/pkg/nessus"
	"github.com/user/nessus-rider/pkg/translate"
)

// DefaultSourceLanguage is the language Nessus writes plugin text in.
const DefaultSourceLanguage = "english"

// UntranslatedMarker is appended to the title when translation failed.
const UntranslatedMarker = " [ENGLISH]"

// ErrBelowThreshold means the finding's severity is under the report cut-off.
var ErrBelowThreshold = errors.New("severity below threshold")

// Translator is what the formatter needs from translate.Translator.
type Translator interface {
	Translate(ctx context.Context, src translate.Source, language string) translate.Result
}

// Formatter turns an AggregatedFinding into a Ghostwriter finding.
type Formatter struct {
	ReportID       int
	Language       string
	SourceLanguage string
	MinSeverity    int
	// Translator may be nil when Language is the source language.
	Translator Translator
}

func (f *Formatter) needsTranslation() bool {
	src := f.SourceLanguage
	if src == "" {
		src = DefaultSourceLanguage
	}
	return f.Language != "" && !strings.EqualFold(f.Language, src)
}

// informational (severity 0) findings are never reported
func (f *Formatter) minSeverity() int {
	if f.MinSeverity < 1 {
		return 1
	}
	return f.MinSeverity
}

// Format builds the finding with Position 0; the pipeline ranks it later.
func (f *Formatter) Format(ctx context.Context, af *AggregatedFinding) (ghostwriter.Finding, error) {
	pd := af.Plugin()
	if pd.Severity < f.minSeverity() {
		slog.Info("Skipping "+pd.PluginName, "plugin_id", pd.PluginID, "severity", pd.Severity)
		return ghostwriter.Finding{}, ErrBelowThreshold
	}
	if pd.PluginAttributes == nil {
		return ghostwriter.Finding{}, fmt.Errorf("plugin %s: %w: missing pluginattributes", pd.PluginID, nessus.ErrMalformedResponse)
	}

	vector, score := ExtractRisk(pd)

	entities, err := BuildAffectedEntities(af.Outputs)
	if err != nil {
		return ghostwriter.Finding{}, fmt.Errorf("plugin %s: %w", pd.PluginID, err)
	}
	steps, err := BuildReplicationSteps(af.Outputs)
	if err != nil {
		return ghostwriter.Finding{}, fmt.Errorf("plugin %s: %w", pd.PluginID, err)
	}

	title := pd.PluginName
	description := pd.PluginAttributes.Description
	mitigation := pd.PluginAttributes.Solution

	if f.needsTranslation() {
		if f.Translator == nil {
			return ghostwriter.Finding{}, fmt.Errorf("plugin %s: no translator configured for %s", pd.PluginID, f.Language)
		}
		res := f.Translator.Translate(ctx, translate.Source{
			PluginID:    string(pd.PluginID),
			Name:        pd.PluginName,
			Description: description,
			Mitigation:  mitigation,
		}, f.Language)
		description, mitigation = res.Description, res.Mitigation
		if res.Status == translate.StatusFailed {
			title += UntranslatedMarker
		}
	}

	return ghostwriter.Finding{
		Title:            title,
		ReportID:         f.ReportID,
		FindingTypeID:    ghostwriter.FindingTypeNetwork,
		SeverityID:       pd.Severity + 1,
		AffectedEntities: entities,
		Description:      description,
		Mitigation:       mitigation,
		CVSSScore:        score,
		CVSSVector:       vector,
		References:       BuildReferences(pd),
		ReplicationSteps: steps,
	}, nil
}
