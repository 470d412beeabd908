// Package token encodes pass identity into the compact payload carried by a
// scannable code and decodes it back on the gate side. The payload is a JSON
// document so decoding does not depend on field order; all semantic
// validation happens downstream.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedPayload = errors.New("payload is not a valid token document")
	ErrMissingField     = errors.New("payload is missing a required field")
)

// Claims is the identity triple a rendered token carries. It is exactly what
// the verifier needs to fetch the authoritative record and re-check the
// binding; it proves nothing by itself.
type Claims struct {
	PassID  string `json:"pass_id"`
	OwnerID string `json:"owner_id"`
	Reason  string `json:"reason"`
}

// Encode renders the identity triple as an opaque payload. Round-trip exact:
// Decode(Encode(...)) reproduces the inputs.
func Encode(passID, ownerID, reason string) ([]byte, error) {
	payload, err := json.Marshal(Claims{PassID: passID, OwnerID: ownerID, Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("encode token: %w", err)
	}
	return payload, nil
}

// Decode parses a scanned payload. It distinguishes structure errors
// (ErrMalformedPayload) from absent fields (ErrMissingField) so the gate can
// report them separately.
func Decode(payload []byte) (Claims, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Claims{}, ErrMalformedPayload
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrMalformedPayload
	}

	for _, field := range []string{"pass_id", "owner_id", "reason"} {
		if _, ok := raw[field]; !ok {
			return Claims{}, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	return claims, nil
}
