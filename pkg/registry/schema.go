// pkg/registry/schema.go
package registry

// ContractCatalog is the exported, versioned view of the contract
// constraints table, consumed by downstream generation services that do not
// link this module.
type ContractCatalog struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Contracts   []ContractEntry `json:"contracts"`
}

type ContractEntry struct {
	Name                 string  `json:"name"`
	SSOTMode             string  `json:"ssotMode"`
	RequiresEvidence     bool    `json:"requiresEvidence"`
	RequiresCitation     bool    `json:"requiresCitation"`
	ResponseFormat       string  `json:"responseFormat"`
	EmptyResultBehavior  string  `json:"emptyResultBehavior"`
	MinEvidenceThreshold int     `json:"minEvidenceThreshold,omitempty"`
	Phase                string  `json:"phase"`
	Terminal             bool    `json:"terminal"`
}
