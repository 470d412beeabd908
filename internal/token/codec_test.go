package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload, err := Encode("pass-1", "42", "Medical")
	require.NoError(t, err)

	claims, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, Claims{PassID: "pass-1", OwnerID: "42", Reason: "Medical"}, claims)
}

func TestRoundTripPreservesSpecialCharacters(t *testing.T) {
	reason := `visit: "dentist" & pharmacy, back by 8`

	payload, err := Encode("p", "owner", reason)
	require.NoError(t, err)

	claims, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, reason, claims.Reason)
}

func TestDecodeIsKeyOrderTolerant(t *testing.T) {
	payload := []byte(`{"reason":"Medical","owner_id":"42","pass_id":"pass-1"}`)

	claims, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "pass-1", claims.PassID)
	assert.Equal(t, "42", claims.OwnerID)
	assert.Equal(t, "Medical", claims.Reason)
}

func TestDecodeMalformed(t *testing.T) {
	for _, payload := range []string{
		"",
		"not json",
		`["pass-1","42","Medical"]`,
		`{"pass_id": 7, "owner_id":"42","reason":"Medical"}`,
	} {
		_, err := Decode([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformedPayload, "payload %q", payload)
	}
}

func TestDecodeMissingField(t *testing.T) {
	for _, payload := range []string{
		`{}`,
		`{"owner_id":"42","reason":"Medical"}`,
		`{"pass_id":"pass-1","reason":"Medical"}`,
		`{"pass_id":"pass-1","owner_id":"42"}`,
	} {
		_, err := Decode([]byte(payload))
		assert.ErrorIs(t, err, ErrMissingField, "payload %q", payload)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	payload := []byte(`{"pass_id":"pass-1","owner_id":"42","reason":"Medical","extra":true}`)

	claims, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "pass-1", claims.PassID)
}
