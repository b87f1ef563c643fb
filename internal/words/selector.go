package words

import (
	"math"
	"unicode/utf16"
)

// HashFunc maps an instance identifier to a signed 32-bit hash.
type HashFunc func(s string) int32

// hashScale is the divisor the deployed clients and servers use to turn the
// hash into a fraction. Changing it would move every live instance to a new word.
const hashScale = 2147483647

// RollingHash computes hash = hash*31 + unit over the UTF-16 code units of s,
// wrapping at 32 bits like the browser implementation.
func RollingHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	return h
}

// Selector deterministically maps an instance identifier to an index.
// The zero value uses RollingHash.
type Selector struct {
	Hash HashFunc
}

// DefaultSelector is the selector used by the server.
var DefaultSelector = Selector{Hash: RollingHash}

// Index returns floor(|hash| / hashScale * listSize), clamped into [0, listSize).
// It is a pure function of its arguments.
func (s Selector) Index(instanceID string, listSize int) int {
	if listSize <= 0 {
		return 0
	}
	hash := s.Hash
	if hash == nil {
		hash = RollingHash
	}
	h := float64(hash(instanceID))
	i := int(math.Floor(math.Abs(h) / hashScale * float64(listSize)))
	// |math.MinInt32| is one past hashScale.
	if i >= listSize {
		i = listSize - 1
	}
	return i
}

// SelectIndex is DefaultSelector.Index.
func SelectIndex(instanceID string, listSize int) int {
	return DefaultSelector.Index(instanceID, listSize)
}
