package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a submitted password into the value that gets stored.
type Hasher interface {
	Hash(password string) (string, error)
}

// Plain stores passwords as supplied.
type Plain struct{}

func (Plain) Hash(password string) (string, error) { return password, nil }

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// New returns a bcrypt hasher when enabled, otherwise Plain.
func New(enabled bool, cost int) Hasher {
	if enabled {
		return Bcrypt{Cost: cost}
	}
	return Plain{}
}
