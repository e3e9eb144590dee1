package access

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeGenerator produces one-time verification codes. Tests inject a
// deterministic implementation.
type CodeGenerator interface {
	Code() (string, error)
}

type randomGenerator struct{}

// NewRandomGenerator returns a crypto/rand backed 6-digit generator.
func NewRandomGenerator() CodeGenerator {
	return randomGenerator{}
}

func (randomGenerator) Code() (string, error) {
	// 100000..999999, uniform
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
