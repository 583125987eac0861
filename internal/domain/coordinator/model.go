package coordinator

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"meraki/internal/domain/validation"
)

// bcryptCost matches the cost used for every stored credential.
const bcryptCost = 12

// Domain errors
var (
	ErrEmptyCredential  = errors.New("credential cannot be empty")
	ErrWrongCredential  = errors.New("incorrect credential")
	ErrCredentialPolicy = errors.New("credential must be 12 to 72 characters with a lowercase letter, an uppercase letter, a digit and a symbol")
)

// Coordinator is the person responsible for a school's registration.
// Only a bcrypt hash of the credential is ever held.
type Coordinator struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"trimmin=3,max=200"`
	Email        string `json:"email" validate:"required,email,max=254"`
	Phone        string `json:"phone" validate:"phone"`
	PasswordHash string `json:"-" validate:"-"`
}

// Validate checks the coordinator form rules.
// PRE: Coordinator struct is populated
// POST: Returns nil if valid, *validation.Error otherwise
func (c *Coordinator) Validate() error {
	return validation.Struct(c)
}

// Normalize returns a copy with surrounding whitespace removed.
// Email case is preserved: login matches it exactly.
func (c Coordinator) Normalize() Coordinator {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}

// SetCredential hashes and stores a credential.
// PRE: plaintext satisfies CheckPolicy
// POST: PasswordHash is set to a bcrypt hash; plaintext is not retained
func (c *Coordinator) SetCredential(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyCredential
	}
	if err := CheckPolicy(plaintext); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hash)
	return nil
}

// CheckCredential verifies a plaintext credential against the stored hash.
// INVARIANT: Coordinator fields are not mutated
func (c *Coordinator) CheckCredential(plaintext string) error {
	if c.PasswordHash == "" || plaintext == "" {
		return ErrWrongCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongCredential
	}
	return nil
}
