// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dealsense/internal/decision/contracts"
)

func LoadCatalog(path string) (*ContractCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat ContractCatalog
	err = json.Unmarshal(data, &cat)
	return &cat, err
}

// BuildCatalog exports the in-code constraints table. Entries come out in
// the table's sorted order so regenerated files diff cleanly.
func BuildCatalog(version string) *ContractCatalog {
	all := contracts.All()
	entries := make([]ContractEntry, 0, len(all))
	for _, c := range all {
		row := contracts.MustGet(c)
		entries = append(entries, ContractEntry{
			Name:                 string(c),
			SSOTMode:             string(row.SSOTMode),
			RequiresEvidence:     row.RequiresEvidence,
			RequiresCitation:     row.RequiresCitation,
			ResponseFormat:       string(row.ResponseFormat),
			EmptyResultBehavior:  string(row.EmptyResultBehavior),
			MinEvidenceThreshold: row.MinEvidenceThreshold,
			Phase:                string(row.Phase),
			Terminal:             contracts.IsTerminal(c),
		})
	}
	return &ContractCatalog{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Contracts:   entries,
	}
}

// Validate checks a loaded catalog against the in-code table: every
// contract present exactly once, no strays, constraint values matching.
func (cat *ContractCatalog) Validate() error {
	if len(cat.Contracts) == 0 {
		return fmt.Errorf("catalog contains no contracts")
	}

	seen := make(map[string]bool, len(cat.Contracts))
	for _, entry := range cat.Contracts {
		if seen[entry.Name] {
			return fmt.Errorf("duplicate contract: %s", entry.Name)
		}
		seen[entry.Name] = true

		c := contracts.AnswerContract(entry.Name)
		row, ok := contracts.Get(c)
		if !ok {
			return fmt.Errorf("unknown contract: %s", entry.Name)
		}
		if entry.SSOTMode != string(row.SSOTMode) ||
			entry.RequiresEvidence != row.RequiresEvidence ||
			entry.RequiresCitation != row.RequiresCitation ||
			entry.ResponseFormat != string(row.ResponseFormat) ||
			entry.EmptyResultBehavior != string(row.EmptyResultBehavior) ||
			entry.MinEvidenceThreshold != row.MinEvidenceThreshold ||
			entry.Phase != string(row.Phase) {
			return fmt.Errorf("contract %s diverges from the constraints table", entry.Name)
		}
	}

	for _, c := range contracts.All() {
		if !seen[string(c)] {
			return fmt.Errorf("catalog missing contract: %s", c)
		}
	}
	return nil
}
