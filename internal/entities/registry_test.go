package entities

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsense/internal/common/logger"
)

func testSnapshot() *Snapshot {
	return NewSnapshot([]Company{
		{ID: "c-1", Name: "Acme"},
		{ID: "c-2", Name: "Foo Industries"},
		{ID: "c-3", Name: "Globex Corporation"},
		{ID: "c-4", Name: "AI"}, // too short to ever match
	})
}

func TestSnapshot_MatchCompany(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name       string
		message    string
		wantID     string
		wantMatch  bool
		minScore   float64
	}{
		{
			name:      "simple substring match",
			message:   "What are the action items from the last meeting with Acme?",
			wantID:    "c-1",
			wantMatch: true,
		},
		{
			name:      "case insensitive",
			message:   "summarize the GLOBEX CORPORATION call",
			wantID:    "c-3",
			wantMatch: true,
			minScore:  0.4,
		},
		{
			name:      "longest name wins",
			message:   "compare foo industries and acme", // both present
			wantID:    "c-2",
			wantMatch: true,
		},
		{
			name:      "short names never match",
			message:   "what did they say about AI adoption",
			wantMatch: false,
		},
		{
			name:      "no entity",
			message:   "what are our next steps",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, score, ok := snap.MatchCompany(tt.message)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantID, company.ID)
				assert.Greater(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
				if tt.minScore > 0 {
					assert.GreaterOrEqual(t, score, tt.minScore)
				}
			}
		})
	}
}

func TestSnapshot_MatchCompany_NilSnapshot(t *testing.T) {
	var snap *Snapshot
	_, _, ok := snap.MatchCompany("anything about Acme")
	assert.False(t, ok)
}

func TestSnapshot_FindByName(t *testing.T) {
	snap := testSnapshot()

	c, ok := snap.FindByName("acme")
	require.True(t, ok)
	assert.Equal(t, "c-1", c.ID)

	_, ok = snap.FindByName("Initech")
	assert.False(t, ok)
}

func TestStaticSource_ReturnsCopy(t *testing.T) {
	src := NewStaticSource([]Company{{ID: "c-1", Name: "Acme"}})

	first, err := src.LookupCompanies(context.Background())
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := src.LookupCompanies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", second[0].Name)
}

func TestRefresher_PublishesSnapshot(t *testing.T) {
	src := NewStaticSource([]Company{{ID: "c-1", Name: "Acme"}})
	r := NewRefresher(src, time.Minute, logger.NewTestLogger())

	// Before the first refresh the snapshot is empty but usable.
	assert.NotNil(t, r.Current())
	assert.Empty(t, r.Current().Companies)

	require.NoError(t, r.Refresh(context.Background()))
	snap := r.Current()
	require.Len(t, snap.Companies, 1)
	assert.Equal(t, "Acme", snap.Companies[0].Name)
}

type failingSource struct{}

func (failingSource) LookupCompanies(context.Context) ([]Company, error) {
	return nil, assert.AnError
}

func TestRefresher_KeepsPreviousSnapshotOnFailure(t *testing.T) {
	src := NewStaticSource([]Company{{ID: "c-1", Name: "Acme"}})
	r := NewRefresher(src, time.Minute, logger.NewNoOpLogger())
	require.NoError(t, r.Refresh(context.Background()))

	r.source = failingSource{}
	assert.Error(t, r.Refresh(context.Background()))

	// Old data still served.
	require.Len(t, r.Current().Companies, 1)
}
