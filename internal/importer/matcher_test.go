package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajabooks/internal/models"
)

func refs(names ...string) []models.StoreRef {
	out := make([]models.StoreRef, 0, len(names))
	for i, n := range names {
		out = append(out, models.StoreRef{ID: string(rune('a' + i)), Name: n})
	}
	return out
}

func TestMatchStoreName_ExactMatchWins(t *testing.T) {
	stores := refs("Palatino", "Palatin", "Palatinos")

	m := MatchStoreName("palatino", stores)
	require.NotNil(t, m)
	assert.Equal(t, "Palatino", m.Name)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestMatchStoreName_ExactAfterPrefixStrip(t *testing.T) {
	stores := refs("Palatino")

	m := MatchStoreName("GRUPO TCW SAS - THE CHEESE WHEEL - Palatino", stores)
	require.NotNil(t, m)
	assert.Equal(t, "Palatino", m.Name)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestMatchStoreName_ApproximateMatch(t *testing.T) {
	stores := refs("Gran Estación", "Plaza Claro")

	// Two substitutions against a name this long sit well under the cutoff.
	m := MatchStoreName("Gran Estacían", stores)
	require.NotNil(t, m)
	assert.Equal(t, "Gran Estación", m.Name)
	assert.Greater(t, m.Confidence, 0.6)
	assert.Less(t, m.Confidence, 1.0)
}

func TestMatchStoreName_ConfidenceBounds(t *testing.T) {
	stores := refs("Palatino", "Plaza Claro", "Quinta Camacho")

	for _, candidate := range []string{"Palatinx", "Plaza Clara", "Quinta Camach"} {
		m := MatchStoreName(candidate, stores)
		require.NotNil(t, m, "candidate %q", candidate)
		assert.GreaterOrEqual(t, m.Confidence, 0.0)
		assert.Less(t, m.Confidence, 1.0)
	}
}

func TestMatchStoreName_RejectsBeyondThreshold(t *testing.T) {
	stores := refs("Palatino")

	assert.Nil(t, MatchStoreName("Green Office", stores))
}

func TestMatchStoreName_EmptyInputs(t *testing.T) {
	assert.Nil(t, MatchStoreName("", refs("Palatino")))
	assert.Nil(t, MatchStoreName("Palatino", nil))
	// Prefix-only input cleans down to nothing.
	assert.Nil(t, MatchStoreName("TCW - ", refs("Palatino")))
}

func TestMatchStoreName_BestApproximateWins(t *testing.T) {
	// Both are within threshold of the candidate; the closer one must win.
	stores := refs("Palatinoss", "Palatinos")

	m := MatchStoreName("Palatino", stores)
	require.NotNil(t, m)
	assert.Equal(t, "Palatinos", m.Name)
}
