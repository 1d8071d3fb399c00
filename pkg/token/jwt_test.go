package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "eventbook")

	signed, err := m.Generate("64f1c0ffee0000000000abcd", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := m.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "64f1c0ffee0000000000abcd", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "eventbook", claims.Issuer)
}

func TestGenerateRejectsEmptySubjectOrRole(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "eventbook")

	_, err := m.Generate("", "user")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Generate("abc", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "eventbook")

	signed, err := m.Generate("someid", "user")
	require.NoError(t, err)

	_, err = m.Validate(signed + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issued, err := NewManager("secret-a", time.Hour, "eventbook").Generate("someid", "user")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour, "eventbook").Validate(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, "eventbook")

	signed, err := m.Generate("someid", "user")
	require.NoError(t, err)

	_, err = m.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsEmptyToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "eventbook")

	_, err := m.Validate("   ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer tok", want: "tok"},
		{name: "empty header", header: "", wantErr: true},
		{name: "missing token", header: "Bearer", wantErr: true},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "extra parts", header: "Bearer a b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
