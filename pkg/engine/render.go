package engine

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/user/nessus-rider/pkg/nessus"
)

var entitiesTable = template.Must(template.New("entities").Parse(
	"<table border='1'><thead><tr><th>Hostnames</th><th>Port</th><th>Protocol</th></tr></thead><tbody>" +
		"{{range .}}<tr><td>{{range $i, $h := .Hosts}}{{if $i}}<br>{{end}}{{$h}}{{end}}</td>" +
		"<td>{{.Port.Number}}</td><td>{{.Port.Protocol}}</td></tr>{{end}}" +
		"</tbody></table>"))

type entityRow struct {
	Port  nessus.PortDescriptor
	Hosts []string
}

// BuildAffectedEntities renders one table row per distinct port descriptor,
// in first-seen order across all outputs. Hostnames are concatenated, not
// deduplicated.
func BuildAffectedEntities(outputs []nessus.Output) (string, error) {
	var rows []*entityRow
	byPort := make(map[string]*entityRow)

	for _, out := range outputs {
		for _, ph := range out.Ports {
			row, ok := byPort[ph.Port]
			if !ok {
				desc, err := nessus.ParsePort(ph.Port)
				if err != nil {
					return "", err
				}
				row = &entityRow{Port: desc}
				byPort[ph.Port] = row
				rows = append(rows, row)
			}
			for _, h := range ph.Hosts {
				row.Hosts = append(row.Hosts, h.Hostname)
			}
		}
	}

	var buf bytes.Buffer
	if err := entitiesTable.Execute(&buf, rows); err != nil {
		return "", fmt.Errorf("render affected entities: %w", err)
	}
	return buf.String(), nil
}

// BuildReplicationSteps lists "host:port" for every host of every output,
// each block followed by the raw plugin output.
func BuildReplicationSteps(outputs []nessus.Output) (string, error) {
	var sb strings.Builder
	for _, out := range outputs {
		for _, ph := range out.Ports {
			desc, err := nessus.ParsePort(ph.Port)
			if err != nil {
				return "", err
			}
			for _, h := range ph.Hosts {
				sb.WriteString(h.Hostname)
				sb.WriteString(":")
				sb.WriteString(desc.Number)
				sb.WriteString("<br>")
			}
		}
		sb.WriteString(out.PluginOutput)
		sb.WriteString("<br><br>")
	}
	return sb.String(), nil
}

// BuildReferences lists structured references (base url + value) followed by
// the see-also links, one "- " bullet per line.
func BuildReferences(pd *nessus.PluginDescription) string {
	var refs []string
	for _, ref := range pd.References() {
		for _, v := range ref.Values.Value {
			refs = append(refs, "- "+ref.URL+v)
		}
	}
	if pd.PluginAttributes != nil {
		for _, u := range pd.PluginAttributes.SeeAlso {
			refs = append(refs, "- "+u)
		}
	}
	return strings.Join(refs, "<br>")
}
