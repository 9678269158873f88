package engine

import "github.com/user/nessus-rider/pkg/nessus"

// NotProvided is the vector reported when a plugin carries no CVSS vector.
const NotProvided = "Not Provided"

// ExtractRisk prefers CVSS v3 over v2. A v3 score of zero is treated as
// absent and falls back to the v2 score; scanners emit 0.0 for "not scored".
func ExtractRisk(pd *nessus.PluginDescription) (vector string, score float64) {
	if pd.PluginAttributes == nil {
		return NotProvided, 0
	}
	ri := pd.PluginAttributes.RiskInformation

	switch {
	case ri.CVSS3Vector != "":
		vector = ri.CVSS3Vector
	case ri.CVSSVector != "":
		vector = ri.CVSSVector
	default:
		vector = NotProvided
	}

	score = float64(ri.CVSS3BaseScore)
	if score == 0 {
		score = float64(ri.CVSSBaseScore)
	}
	return vector, score
}
