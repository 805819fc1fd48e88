package oauth

import "crypto/rand"

const (
	stateAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	stateLength   = 24
)

// StateGenerator produces the opaque anti-CSRF state embedded in consent
// URLs. The default implementation is cryptographically random; tests
// substitute a deterministic one.
type StateGenerator interface {
	GenerateState() string
}

// GenerateFunc adapts a plain function to a StateGenerator.
type GenerateFunc func() string

func (f GenerateFunc) GenerateState() string { return f() }

type randomState struct{}

// NewRandomStateGenerator returns the default crypto/rand-backed generator.
func NewRandomStateGenerator() StateGenerator { return randomState{} }

func (randomState) GenerateState() string {
	buf := make([]byte, stateLength)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	out := make([]byte, stateLength)
	for i, b := range buf {
		out[i] = stateAlphabet[int(b)%len(stateAlphabet)]
	}
	return string(out)
}
