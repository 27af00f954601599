//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost is lowered under the race detector
const DefaultPasswordCost = bcrypt.MinCost

func passwordHashCost() int {
	// Reduce cost for race-enabled builds so test suites can run with strict timeouts.
	return DefaultPasswordCost
}
