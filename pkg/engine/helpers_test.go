package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/nessus-rider/pkg/nessus"
	"github.com/user/nessus-rider/pkg/translate"
)

// fragment decodes a plugin detail the way the Nessus client would.
func fragment(t *testing.T, pluginID, severity int, name string, outputs string) *nessus.PluginDetail {
	t.Helper()
	raw := fmt.Sprintf(`{
		"info": {"plugindescription": {
			"severity": %d,
			"pluginname": %q,
			"pluginid": "%d",
			"pluginattributes": {
				"description": "%s description",
				"solution": "%s solution",
				"risk_information": {"cvss3_base_score": "%d.0", "cvss3_vector": "CVSS:3.0/AV:N"},
				"see_also": ["https://example.org/%d"]
			}
		}},
		"outputs": %s
	}`, severity, name, pluginID, name, name, severity*2, pluginID, outputs)

	var d nessus.PluginDetail
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	require.NoError(t, d.Validate())
	return &d
}

func single(t *testing.T, d *nessus.PluginDetail) *AggregatedFinding {
	t.Helper()
	g := NewFindingGraph()
	g.AddFragment(d)
	f, ok := g.Get(string(d.Info.PluginDescription.PluginID))
	require.True(t, ok)
	return f
}

type fakeSource struct {
	scans   map[string][]int
	details map[string]*nessus.PluginDetail
	failing map[string]bool
	calls   []string
}

func (s *fakeSource) FetchScan(ctx context.Context, scanID string) (*nessus.ScanDetail, error) {
	s.calls = append(s.calls, "scan "+scanID)
	if s.failing[scanID] {
		return nil, &nessus.APIError{StatusCode: 404, Message: "not found"}
	}
	sd := &nessus.ScanDetail{}
	for _, id := range s.scans[scanID] {
		sd.Vulnerabilities = append(sd.Vulnerabilities, nessus.ScanVulnerability{PluginID: id})
	}
	return sd, nil
}

func (s *fakeSource) FetchPluginDetail(ctx context.Context, scanID string, pluginID int) (*nessus.PluginDetail, error) {
	key := fmt.Sprintf("%s/%d", scanID, pluginID)
	s.calls = append(s.calls, "plugin "+key)
	if s.failing[key] {
		return nil, fmt.Errorf("plugin %d: %w", pluginID, nessus.ErrMalformedResponse)
	}
	d, ok := s.details[key]
	if !ok {
		return nil, &nessus.APIError{StatusCode: 404}
	}
	return d, nil
}

type fakeTranslator struct {
	status translate.Status
	calls  []translate.Source
}

func (f *fakeTranslator) Translate(ctx context.Context, src translate.Source, language string) translate.Result {
	f.calls = append(f.calls, src)
	if f.status == translate.StatusFailed {
		return translate.Result{Description: src.Description, Mitigation: src.Mitigation, Status: translate.StatusFailed}
	}
	return translate.Result{
		Description: "[" + language + "] " + src.Description,
		Mitigation:  "[" + language + "] " + src.Mitigation,
		Status:      f.status,
	}
}
