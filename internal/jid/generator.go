package jid

// Generator hands out identifiers for newly constructed entities.
// Random is used in production; tests substitute a deterministic sequence
// so serialized output can be compared byte for byte.
type Generator interface {
	Next() ID
}

// RandomGenerator produces version 4 UUIDs.
//
// Thread-safety: RandomGenerator is stateless and safe for concurrent use.
type RandomGenerator struct{}

// Next returns a fresh random identifier.
func (RandomGenerator) Next() ID {
	return New()
}

// Random is the default generator.
var Random Generator = RandomGenerator{}
