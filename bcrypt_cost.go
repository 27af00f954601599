//go:build !race

package auth

// DefaultPasswordCost matches the salt rounds used by the attendance service
const DefaultPasswordCost = 10

func passwordHashCost() int {
	return DefaultPasswordCost
}
