package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsense/internal/decision/contracts"
)

func TestBuildCatalogCoversEveryContract(t *testing.T) {
	cat := BuildCatalog("1.0.0")

	assert.Len(t, cat.Contracts, len(contracts.All()))
	require.NoError(t, cat.Validate())

	for _, entry := range cat.Contracts {
		if entry.Name == string(contracts.Clarify) || entry.Name == string(contracts.Refuse) {
			assert.True(t, entry.Terminal, entry.Name)
		} else {
			assert.False(t, entry.Terminal, entry.Name)
		}
	}
}

func TestLoadCatalogRoundTrip(t *testing.T) {
	cat := BuildCatalog("1.0.0")
	data, err := json.MarshalIndent(cat, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "contract-registry.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, cat.Version, loaded.Version)
	require.NoError(t, loaded.Validate())
}

func TestValidateRejectsDrift(t *testing.T) {
	cat := BuildCatalog("1.0.0")
	cat.Contracts[0].SSOTMode = "authoritative_ish"
	assert.Error(t, cat.Validate())

	cat = BuildCatalog("1.0.0")
	cat.Contracts = append(cat.Contracts, cat.Contracts[0])
	assert.Error(t, cat.Validate())

	cat = BuildCatalog("1.0.0")
	cat.Contracts = cat.Contracts[1:]
	assert.Error(t, cat.Validate())

	cat = BuildCatalog("1.0.0")
	cat.Contracts[0].Name = "MADE_UP"
	assert.Error(t, cat.Validate())
}
