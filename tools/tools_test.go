package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	body := []byte(`{"payment_session_id":"abc","status":"paid"}`)

	t.Run("accepts a matching signature", func(t *testing.T) {
		ok, reason := VerifySignature("s3cret", SignBody("s3cret", body), body)
		assert.True(t, ok)
		assert.Empty(t, reason)
	})

	t.Run("rejects another secret", func(t *testing.T) {
		ok, reason := VerifySignature("s3cret", SignBody("other", body), body)
		assert.False(t, ok)
		assert.Equal(t, "signature mismatch", reason)
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		sig := SignBody("s3cret", body)
		ok, _ := VerifySignature("s3cret", sig, []byte(`{"status":"paid"}`))
		assert.False(t, ok)
	})

	t.Run("rejects malformed headers", func(t *testing.T) {
		for header, want := range map[string]string{
			"":            "missing signature",
			"md5=abcd":    "invalid signature format",
			"sha256=zzzz": "invalid signature hex",
		} {
			ok, reason := VerifySignature("s3cret", header, body)
			assert.False(t, ok)
			assert.Equal(t, want, reason, header)
		}
	})

	t.Run("requires a secret", func(t *testing.T) {
		ok, reason := VerifySignature("", SignBody("", body), body)
		assert.False(t, ok)
		assert.Equal(t, "webhook secret not configured", reason)
	})
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "+44 (20) 7946-0958", want: "+442079460958"},
		{in: "0044 20 7946 0958", want: "+442079460958"},
		{in: "912 345 678", want: "912345678"},
		{in: "123", wantErr: true},
		{in: "", wantErr: true},
		{in: "+1234567890123456", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.True(t, PasswordMatches(hash, "secret1"))
	assert.False(t, PasswordMatches(hash, "secret2"))
	assert.Equal(t, "password", CheckPassword("12345"))
	assert.Empty(t, CheckPassword("123456"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("fan@club.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.club.pt"))
	assert.False(t, ValidateEmail("fan@club"))
	assert.False(t, ValidateEmail("not an email"))
}

func TestRandomCode(t *testing.T) {
	code := RandomCode(8)
	assert.Len(t, code, 8)
	assert.NotContains(t, code, "0")
	assert.NotContains(t, code, "O")
	assert.Len(t, RandomNumbers(6), 6)
	assert.Len(t, EncryptTextSHA512("x"), 128)
}
