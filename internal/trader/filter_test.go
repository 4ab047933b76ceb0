package trader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/flipbot/internal/domain"
)

func traitListing(tokenID string, traits map[string]string) domain.Listing {
	return domain.Listing{TokenID: tokenID, Traits: traits}
}

func TestFilter_EmptyDesiredIsIdentity(t *testing.T) {
	listings := []domain.Listing{
		traitListing("1", map[string]string{"Background": "Gold"}),
		traitListing("2", nil),
	}

	for _, f := range []*Filter{NewFilter(nil), NewFilter(map[string]string{})} {
		got := f.Apply(listings)
		require.Len(t, got, 2)
		// identidad: misma slice, sin copiar
		assert.Equal(t, listings, got)
	}
}

func TestFilter_ExactTraitMatch(t *testing.T) {
	listings := []domain.Listing{
		traitListing("1", map[string]string{"Background": "Gold", "Eyes": "Laser"}),
		traitListing("2", map[string]string{"Background": "Silver"}),
		traitListing("3", map[string]string{"Eyes": "Laser"}),
		traitListing("4", map[string]string{"Background": "Gold"}),
	}

	f := NewFilter(map[string]string{"Background": "Gold"})
	got := f.Apply(listings)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].TokenID)
	assert.Equal(t, "4", got[1].TokenID)
}

func TestFilter_AllTraitsMustMatch(t *testing.T) {
	listings := []domain.Listing{
		traitListing("1", map[string]string{"Background": "Gold", "Eyes": "Laser"}),
		traitListing("2", map[string]string{"Background": "Gold", "Eyes": "Plain"}),
	}

	f := NewFilter(map[string]string{"Background": "Gold", "Eyes": "Laser"})
	got := f.Apply(listings)

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].TokenID)
}
