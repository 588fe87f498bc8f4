package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"valid with punctuation", "529.982.247-25", "52998224725", true},
		{"valid digits only", "52998224725", "52998224725", true},
		{"valid with spaces", " 111.444.777-35 ", "11144477735", true},
		{"wrong first check digit", "52998224735", "", false},
		{"wrong second check digit", "52998224726", "", false},
		{"too short", "5299822472", "", false},
		{"too long", "529982247255", "", false},
		{"repeated digits", "111.111.111-11", "", false},
		{"all zeros", "00000000000", "", false},
		{"letters", "abc.def.ghi-jk", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CPF(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidCPF)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"mobile with punctuation", "(11) 98765-4321", "11987654321", true},
		{"mobile digits only", "11987654321", "11987654321", true},
		{"landline", "1133334444", "1133334444", true},
		{"mobile missing leading nine", "11887654321", "", false},
		{"area code starting with zero", "0198765432", "", false},
		{"too short", "987654321", "", false},
		{"too long", "119876543210", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Phone(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
