package cnst

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyMode_Order(t *testing.T) {
	assert.Less(t, PolicyReadOnly, PolicyEngagement)
	assert.Less(t, PolicyEngagement, PolicyModeration)
}

func TestPolicyMode_String(t *testing.T) {
	assert.Equal(t, "read_only", PolicyReadOnly.String())
	assert.Equal(t, "engagement", PolicyEngagement.String())
	assert.Equal(t, "moderation", PolicyModeration.String())
	assert.Equal(t, "policy(9)", PolicyMode(9).String())
}

func TestParsePolicyMode(t *testing.T) {
	for _, m := range []PolicyMode{PolicyReadOnly, PolicyEngagement, PolicyModeration} {
		got, err := ParsePolicyMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParsePolicyMode("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReadOnly, got)

	_, err = ParsePolicyMode("admin")
	assert.True(t, errors.Is(err, ErrUnknownPolicyMode))
}
