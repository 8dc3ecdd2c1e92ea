package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "valid", password: "Passw0rd!"},
		{name: "valid all specials", password: "aB3!@#$x"},
		{name: "too short", password: "aB3!", wantErr: "at least 8 characters"},
		{name: "illegal character", password: "Passw0rd!%", wantErr: "may only contain"},
		{name: "illegal space", password: "Pass w0rd!", wantErr: "may only contain"},
		{name: "missing lowercase", password: "PASSW0RD!", wantErr: "lowercase"},
		{name: "missing uppercase", password: "passw0rd!", wantErr: "uppercase"},
		{name: "missing digit", password: "Password!", wantErr: "digit"},
		{name: "missing special", password: "Passw0rdX", wantErr: "special character"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var policyErr *PolicyError
			require.ErrorAs(t, err, &policyErr)
			assert.Contains(t, policyErr.Reason, tt.wantErr)
		})
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "Passw0rd!")

	assert.True(t, CheckPassword("Passw0rd!", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestHashPassword_SaltsIndependently(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	second, err := HashPassword("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("Passw0rd!", first))
	assert.True(t, CheckPassword("Passw0rd!", second))
}
