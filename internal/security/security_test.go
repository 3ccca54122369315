package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPasswordWithParams("correct horse", FastParams)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$")

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashIsSalted(t *testing.T) {
	a, err := HashPasswordWithParams("same", FastParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams("same", FastParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, encoded := range []string{"", "plaintext", "$bcrypt$v=19$t=1,m=1,p=1$a$b", "$argon2id$v=18$t=1,m=1,p=1$a$b"} {
		_, err := VerifyPassword("x", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		score    int
		pct      int
		text     string
		color    string
	}{
		{"", 0, 0, "Add: at least 8 characters, lowercase letter", colorWeak},
		{"abc", 25, 25, "Add: at least 8 characters, uppercase letter", colorWeak},
		{"abcdefgh", 50, 50, "Add: uppercase letter, number", colorFair},
		{"Abcdefgh", 75, 75, "Add: number", colorGood},
		{"Abcdefg1", 100, 100, "Strong password", colorStrong},
		{"Abcdefg1!", 110, 100, "Strong password", colorStrong},
		{"abcdefg1!", 85, 85, "Strong password", colorStrong},
		{"ABC!", 35, 35, "Add: at least 8 characters, lowercase letter", colorWeak},
	}
	for _, tc := range cases {
		s := PasswordStrength(tc.password)
		assert.Equal(t, tc.score, s.Score, tc.password)
		assert.Equal(t, tc.pct, s.Percentage, tc.password)
		assert.Equal(t, tc.text, s.Text, tc.password)
		assert.Equal(t, tc.color, s.Color, tc.password)
	}
}

func TestPasswordStrengthLengthCountsRunes(t *testing.T) {
	// Emoji are one rune but two UTF-16 units; they also score as symbols.
	short := PasswordStrength("😀😀😀😀")
	assert.Equal(t, 10, short.Score)
	assert.Equal(t, "Add: at least 8 characters, lowercase letter", short.Text)

	assert.Equal(t, 35, PasswordStrength("😀😀😀😀😀😀😀😀").Score)
	assert.Equal(t, 60, PasswordStrength("ééééééé1").Score, "eight runes, sixteen bytes")
	assert.Equal(t, 10+25, PasswordStrength("éééééé1").Score, "seven runes miss the length points")
}

func TestProfileToken(t *testing.T) {
	token, err := GenerateProfileToken("secret", "profile-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseProfileToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "profile-1", claims.ProfileID)

	_, err = ParseProfileToken(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateProfileToken("secret", "profile-1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseProfileToken(expired, "secret")
	assert.Error(t, err)
}

func TestSnapshotSignature(t *testing.T) {
	body := []byte(`{"books":[]}`)
	sig := SignSnapshot("k", body)

	assert.True(t, VerifySnapshot("k", body, sig))
	assert.False(t, VerifySnapshot("k", []byte(`{"books":[1]}`), sig))
	assert.False(t, VerifySnapshot("other", body, sig))
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
