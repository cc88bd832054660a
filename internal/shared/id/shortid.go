package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode/utf8"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12

	// MaxRequestNoLength is the provider limit for out_request_no.
	MaxRequestNoLength = 64
)

// Generate creates a cryptographically random, URL-safe Base62 ID.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// MustGenerate creates a random short ID and panics on error.
func MustGenerate(length int) string {
	id, err := Generate(length)
	if err != nil {
		panic(err)
	}
	return id
}

// NewRefundRequestNo derives a fresh refund idempotency token for an order.
// Every call yields a new value. The order id prefix is cut at a rune boundary
// when the result would exceed MaxRequestNoLength bytes.
func NewRefundRequestNo(orderID string) (string, error) {
	suffix, err := Generate(DefaultLength)
	if err != nil {
		return "", err
	}

	maxPrefix := MaxRequestNoLength - len(suffix) - 1
	if len(orderID) > maxPrefix {
		cut := maxPrefix
		for cut > 0 && !utf8.RuneStart(orderID[cut]) {
			cut--
		}
		orderID = orderID[:cut]
	}
	return fmt.Sprintf("%s_%s", orderID, suffix), nil
}
