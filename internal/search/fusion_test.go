package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit/seoulmate/internal/store"
)

func TestFuseCombinedScores(t *testing.T) {
	semantic := []store.Hit{{ID: 0, Score: 0.9}}
	lexical := []store.Hit{{ID: 0, Score: 2.0}, {ID: 1, Score: 4.0}}

	fused := fuse(semantic, lexical, 0.7)
	require.Len(t, fused, 2)

	// A: 0.7*0.9 + 0.3*(2/4) = 0.78. B: 0 + 0.3*(4/4) = 0.3.
	assert.Equal(t, 0, fused[0].id)
	assert.InDelta(t, 0.78, fused[0].combined, 1e-9)
	assert.Equal(t, 1, fused[1].id)
	assert.InDelta(t, 0.3, fused[1].combined, 1e-9)
}

func TestFuseZeroLexicalMax(t *testing.T) {
	semantic := []store.Hit{{ID: 0, Score: 0.5}}
	lexical := []store.Hit{{ID: 0, Score: 0}}

	fused := fuse(semantic, lexical, 0.6)
	require.Len(t, fused, 1)
	// All-zero lexical batch normalizes against 1, not 0.
	assert.InDelta(t, 0.3, fused[0].combined, 1e-9)
}

func TestFuseMissingSourceContributesZero(t *testing.T) {
	semantic := []store.Hit{{ID: 0, Score: 0.8}}
	lexical := []store.Hit{{ID: 1, Score: 3.0}}

	fused := fuse(semantic, lexical, 0.5)
	require.Len(t, fused, 2)
	assert.InDelta(t, 0.4, fused[0].combined, 1e-9)
	assert.InDelta(t, 0.5, fused[1].combined, 1e-9)
	assert.Equal(t, 1, fused[0].id)
}

func TestFuseTieBreaksByCatalogOrder(t *testing.T) {
	semantic := []store.Hit{{ID: 3, Score: 0.5}, {ID: 1, Score: 0.5}}

	fused := fuse(semantic, nil, 1.0)
	require.Len(t, fused, 2)
	assert.Equal(t, 1, fused[0].id)
	assert.Equal(t, 3, fused[1].id)
}

func TestFuseEmpty(t *testing.T) {
	assert.Empty(t, fuse(nil, nil, 0.7))
}
