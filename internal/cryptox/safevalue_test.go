package cryptox

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "exact", input: strings.Repeat("k", 32), valid: true},
		{name: "short", input: strings.Repeat("k", 31)},
		{name: "long", input: strings.Repeat("k", 33)},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := NewKey(tt.input)
			assert.Equal(t, tt.valid, sv.Valid())

			v, err := sv.Value()
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.input, v)
				return
			}
			require.ErrorIs(t, err, common.ErrorValidation)
			assert.Empty(t, v)
		})
	}
}

func TestNewIV(t *testing.T) {
	assert.True(t, NewIV("this_is_my_iv_16").Valid())
	assert.False(t, NewIV("too short").Valid())
	// length is counted in bytes, not runes
	assert.False(t, NewIV(strings.Repeat("é", 16)).Valid())
}

func TestSafeValue_ZeroIsInvalid(t *testing.T) {
	var sv SafeValue[int]
	assert.False(t, sv.Valid())

	_, err := sv.Value()
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestSafeValue_NilPredicate(t *testing.T) {
	sv := NewSafeValue(42, nil)
	_, err := sv.Value()
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestSafeValue_CustomPredicate(t *testing.T) {
	positive := func(v int) bool { return v > 0 }

	v, err := NewSafeValue(7, positive).Value()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = NewSafeValue(-1, positive).Value()
	assert.ErrorIs(t, err, common.ErrorValidation)
}
