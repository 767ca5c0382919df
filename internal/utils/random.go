package utils

import (
	"crypto/rand"
	"math/big"
)

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomNumericString generates a random string containing only digits.
func RandomNumericString(length int) string {
	return randomFrom("0123456789", length)
}

// RandomToken returns an alphanumeric string suitable for refresh tokens.
func RandomToken(length int) string {
	return randomFrom(tokenCharset, length)
}

func randomFrom(charset string, length int) string {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(err)
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}
