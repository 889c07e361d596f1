package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	industries := []string{"saas"}
	locations := []string{"Austin"}

	a, err := NewSyntheticSource(99).Discover(ctx, industries, locations, 10)
	require.NoError(t, err)
	b, err := NewSyntheticSource(99).Discover(ctx, industries, locations, 10)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDiscoverGeneratesPerQueryPair(t *testing.T) {
	src := NewSyntheticSource(1)

	candidates, err := src.Discover(context.Background(),
		[]string{"saas", "fintech"}, []string{"", "Austin"}, 5)
	require.NoError(t, err)

	// 2 industries x 2 locations x 5 per query.
	assert.Len(t, candidates, 20)

	for _, c := range candidates {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Company)
		assert.Equal(t, "synthetic", c.Source)
		if c.Email != "" {
			assert.Contains(t, c.Email, "@")
			assert.Equal(t, c.Email, strings.ToLower(c.Email))
		}
	}
}

func TestDiscoverTagsIndustryAndLocation(t *testing.T) {
	src := NewSyntheticSource(2)

	candidates, err := src.Discover(context.Background(), []string{"fintech"}, []string{"Boston"}, 3)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.Equal(t, "fintech", c.Industry)
		assert.Equal(t, "Boston", c.Location)
	}
}
