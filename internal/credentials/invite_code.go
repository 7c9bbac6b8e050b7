package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word lists for generating human-readable invite codes
var adjectives = []string{
	"happy", "sunny", "bright", "quick", "smart", "cool", "warm", "fast",
	"blue", "green", "red", "golden", "silver", "purple", "orange", "pink",
}

var nouns = []string{
	"cat", "dog", "bird", "fish", "tree", "star", "moon", "sun",
	"house", "car", "book", "desk", "chair", "lamp", "phone", "cake",
}

// GenerateInviteCode generates a random invite code in the format
// "adjective-noun-number" with a number below 100.
func GenerateInviteCode() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	num, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%d", adjective, noun, num.Int64()), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
