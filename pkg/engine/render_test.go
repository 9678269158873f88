package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/nessus-rider/pkg/nessus"
)

func outputs(t *testing.T, raw string) []nessus.Output {
	t.Helper()
	var out []nessus.Output
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestBuildAffectedEntitiesGroupsByPort(t *testing.T) {
	outs := outputs(t, `[
		{"ports": {"443 / tcp / www": [{"hostname": "a.example"}], "22 / tcp / ssh": [{"hostname": "b.example"}]}, "plugin_output": "one"},
		{"ports": {"443 / tcp / www": [{"hostname": "a.example"}, {"hostname": "c.example"}], "53 / udp / dns": [{"hostname": "ns1.example"}]}, "plugin_output": "two"}
	]`)

	table, err := BuildAffectedEntities(outs)
	require.NoError(t, err)
	assert.Equal(t,
		"<table border='1'><thead><tr><th>Hostnames</th><th>Port</th><th>Protocol</th></tr></thead><tbody>"+
			"<tr><td>a.example<br>a.example<br>c.example</td><td>443</td><td>tcp</td></tr>"+
			"<tr><td>b.example</td><td>22</td><td>tcp</td></tr>"+
			"<tr><td>ns1.example</td><td>53</td><td>udp</td></tr>"+
			"</tbody></table>",
		table)
}

func TestBuildAffectedEntitiesEscapesHostnames(t *testing.T) {
	outs := outputs(t, `[{"ports": {"80 / tcp / www": [{"hostname": "<script>"}]}, "plugin_output": ""}]`)
	table, err := BuildAffectedEntities(outs)
	require.NoError(t, err)
	assert.Contains(t, table, "<td>&lt;script&gt;</td>")
}

func TestBuildAffectedEntitiesEmpty(t *testing.T) {
	table, err := BuildAffectedEntities(nil)
	require.NoError(t, err)
	assert.Equal(t, "<table border='1'><thead><tr><th>Hostnames</th><th>Port</th><th>Protocol</th></tr></thead><tbody></tbody></table>", table)
}

func TestBuildAffectedEntitiesBadPort(t *testing.T) {
	outs := outputs(t, `[{"ports": {"443/tcp": [{"hostname": "a"}]}, "plugin_output": ""}]`)
	_, err := BuildAffectedEntities(outs)
	assert.ErrorIs(t, err, nessus.ErrMalformedResponse)

	_, err = BuildReplicationSteps(outs)
	assert.ErrorIs(t, err, nessus.ErrMalformedResponse)
}

func TestBuildReplicationSteps(t *testing.T) {
	outs := outputs(t, `[
		{"ports": {"443 / tcp / www": [{"hostname": "a"}, {"hostname": "b"}]}, "plugin_output": "TLSv1.0 enabled"},
		{"ports": {"8443 / tcp / www": [{"hostname": "c"}]}, "plugin_output": "TLSv1.1 enabled"}
	]`)
	steps, err := BuildReplicationSteps(outs)
	require.NoError(t, err)
	assert.Equal(t, "a:443<br>b:443<br>TLSv1.0 enabled<br><br>c:8443<br>TLSv1.1 enabled<br><br>", steps)
}

func TestBuildReferences(t *testing.T) {
	var pd nessus.PluginDescription
	require.NoError(t, json.Unmarshal([]byte(`{
		"pluginid": "1", "pluginname": "x",
		"pluginattributes": {
			"description": "d",
			"risk_information": {},
			"see_also": ["https://nvd.example/a", "https://vendor.example/b"],
			"ref_information": {"ref": [
				{"name": "cve", "url": "https://cve.example/?id=", "values": {"value": ["CVE-2024-1", "CVE-2024-2"]}}
			]}
		}
	}`), &pd))

	assert.Equal(t,
		"- https://cve.example/?id=CVE-2024-1<br>- https://cve.example/?id=CVE-2024-2<br>- https://nvd.example/a<br>- https://vendor.example/b",
		BuildReferences(&pd))
}

func TestBuildReferencesEmpty(t *testing.T) {
	assert.Equal(t, "", BuildReferences(&nessus.PluginDescription{PluginAttributes: &nessus.PluginAttributes{}}))
}
