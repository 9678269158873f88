package engine

import "github.com/user/nessus-rider/pkg/nessus"

// AggregatedFinding is every scan's evidence for one plugin, folded together.
// It keeps the plugin detail JSON shape so the dump file stays readable by
// other Nessus tooling.
type AggregatedFinding struct {
	Info    nessus.PluginInfo `json:"info"`
	Outputs []nessus.Output   `json:"outputs"`
}

func (f *AggregatedFinding) PluginID() string {
	return string(f.Info.PluginDescription.PluginID)
}

// Plugin returns the plugin description shared by all folded fragments.
func (f *AggregatedFinding) Plugin() *nessus.PluginDescription {
	return &f.Info.PluginDescription
}
