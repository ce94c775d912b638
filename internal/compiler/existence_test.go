package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eventgraph/internal/ir"
)

func records(ids ...string) []ir.EventRecord {
	out := make([]ir.EventRecord, len(ids))
	for i, id := range ids {
		out[i] = ir.EventRecord{
			ID:    id,
			Name:  id,
			Start: ir.HandlerRef{Module: "handlers.js", Function: "start"},
		}
	}
	return out
}

// Scenario C: graph keys event-1..3, catalog only event-1 and event-2.
func TestValidateExistence_MissingKey(t *testing.T) {
	g := Build(ir.Declaration{
		"event-1": {Children: []string{"event-2"}},
		"event-2": {Children: []string{"event-3"}},
		"event-3": {},
	})

	err := ValidateExistence(records("event-1", "event-2"), g, ExistenceStrict)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndeclaredEvent)

	var gErr *GraphError
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, "event-3", gErr.EventID)
	assert.Equal(t, CodeUndeclaredEvent, gErr.Code)
}

func TestValidateExistence_AllPresent(t *testing.T) {
	g := Build(ir.Declaration{
		"event-1": {Children: []string{"event-2", "event-3"}},
	})

	assert.NoError(t, ValidateExistence(records("event-3", "event-2", "event-1"), g, ExistenceStrict))
}

func TestValidateExistence_ExtraCatalogRecordsAllowed(t *testing.T) {
	g := Build(ir.Declaration{"event-1": {}})
	assert.NoError(t, ValidateExistence(records("event-1", "unused"), g, ExistenceStrict))
}

func TestValidateExistence_LeafPolicy(t *testing.T) {
	g := Build(ir.Declaration{
		"event-1": {Children: []string{"leaf"}},
	})
	catalog := records("event-1")

	err := ValidateExistence(catalog, g, ExistenceStrict)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndeclaredEvent)
	assert.Contains(t, err.Error(), "leaf")

	assert.NoError(t, ValidateExistence(catalog, g, ExistenceDeclaredOnly),
		"declared-only policy skips child-only ids")
}

func TestValidateExistence_FirstMissingInLexicalOrder(t *testing.T) {
	g := Build(ir.Declaration{
		"root": {Children: []string{"zeta", "alpha"}},
	})

	err := ValidateExistence(records("root"), g, ExistenceStrict)
	var gErr *GraphError
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, "alpha", gErr.EventID)
}

func TestParseExistencePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ExistencePolicy
		wantErr bool
	}{
		{"strict", ExistenceStrict, false},
		{"", ExistenceStrict, false},
		{"declared", ExistenceDeclaredOnly, false},
		{"loose", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExistencePolicy(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid existence policy")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "strict", ExistenceStrict.String())
	assert.Equal(t, "declared", ExistenceDeclaredOnly.String())
	assert.Equal(t, "ExistencePolicy(7)", ExistencePolicy(7).String())
}
