// Package binding derives and verifies the one-way binding between a pass's
// approved content and its stored secret. The binder is what makes a rendered
// token tamper-evident: the secret is derived once at approval from the
// authoritative owner and reason, and a scan can only match it by presenting
// the same pair.
package binding

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor used for binding secrets.
const DefaultCost = bcrypt.DefaultCost

type Binder struct {
	cost int
}

func NewBinder(cost int) *Binder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Binder{cost: cost}
}

// Derive computes the binding secret for a pass. Called exactly once, at
// approval, with the record's original owner and reason; scanned copies are
// never used here.
func (b *Binder) Derive(ownerID, reason string) (string, error) {
	secret, err := bcrypt.GenerateFromPassword(material(ownerID, reason), b.cost)
	if err != nil {
		return "", fmt.Errorf("derive binding secret: %w", err)
	}
	return string(secret), nil
}

// Verify recomputes the comparison material from the scanned owner and reason
// and checks it against the stored secret. bcrypt's comparison is one-way and
// constant-time with respect to the secret; direct equality would be neither.
func (b *Binder) Verify(ownerID, reason, storedSecret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedSecret), material(ownerID, reason))
	return err == nil
}

func material(ownerID, reason string) []byte {
	return []byte(ownerID + reason)
}
