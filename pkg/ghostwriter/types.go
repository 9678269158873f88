package ghostwriter

// FindingTypeNetwork is the reportedFinding type used for scanner imports.
const FindingTypeNetwork = 1

// Finding is one reportedFinding_insert_input object.
type Finding struct {
	Title            string  `json:"title"`
	ReportID         int     `json:"reportId"`
	FindingTypeID    int     `json:"findingTypeId"`
	SeverityID       int     `json:"severityId"`
	AffectedEntities string  `json:"affectedEntities"`
	Description      string  `json:"description"`
	Mitigation       string  `json:"mitigation"`
	CVSSScore        float64 `json:"cvssScore"`
	CVSSVector       string  `json:"cvssVector"`
	References       string  `json:"references"`
	ReplicationSteps string  `json:"replication_steps"`
	Position         int     `json:"position"`
}

// Identity is the answer of the whoami query.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Expires  string `json:"expires"`
}

// Summary counts the outcome of an insert batch.
type Summary struct {
	Inserted int
	Failed   int
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}
