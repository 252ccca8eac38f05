package tools

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"math/big"
)

const numbers = "0123456789"
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const upperCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func EncryptTextSHA512(text string) string {
	sum := sha512.Sum512([]byte(text))
	return hex.EncodeToString(sum[:])
}

func RandomNumbers(length int) string {
	return randomFrom(numbers, length)
}

func RandomString(length int) string {
	return randomFrom(charset, length)
}

// RandomCode is an upper-case code without look-alike characters (0/O, 1/I).
func RandomCode(length int) string {
	return randomFrom(upperCharset, length)
}

func randomFrom(alphabet string, length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}
