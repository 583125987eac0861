package coordinator

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"
)

// CredentialLength is the length of every generated credential.
const CredentialLength = 12

// maxCredentialLength is the bcrypt input limit.
const maxCredentialLength = 72

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "!@#$%^&*()-_=+[]{};:,.?"
)

var credentialAlphabet = lowercase + uppercase + digits + symbols

// GenerateCredential returns a random credential of CredentialLength characters
// holding at least one lowercase letter, uppercase letter, digit and symbol.
// POST: result satisfies CheckPolicy
func GenerateCredential() (string, error) {
	return generateCredential(rand.Reader)
}

func generateCredential(r io.Reader) (string, error) {
	buf := make([]byte, 0, CredentialLength)
	for _, class := range []string{lowercase, uppercase, digits, symbols} {
		c, err := pick(r, class)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < CredentialLength {
		c, err := pick(r, credentialAlphabet)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	// Fisher-Yates so the mandatory classes do not sit at fixed positions.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randIndex(r, i+1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func pick(r io.Reader, set string) (byte, error) {
	i, err := randIndex(r, len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randIndex(r io.Reader, n int) (int, error) {
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// CheckPolicy reports whether s meets the credential complexity policy.
func CheckPolicy(s string) error {
	if len(s) < CredentialLength || len(s) > maxCredentialLength {
		return ErrCredentialPolicy
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case strings.ContainsRune(lowercase, r):
			lower = true
		case strings.ContainsRune(uppercase, r):
			upper = true
		case strings.ContainsRune(digits, r):
			digit = true
		case strings.ContainsRune(symbols, r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return ErrCredentialPolicy
	}
	return nil
}
