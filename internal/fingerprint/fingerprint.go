// Package fingerprint computes binding tokens over ordered tuples of values.
//
// A fingerprint is a keyed BLAKE2b-256 MAC over a canonical protobuf-wire
// encoding of its parts. Tokens cannot be recomputed without the secret.
package fingerprint

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
	"google.golang.org/protobuf/encoding/protowire"
)

// MinKeyLen is the shortest secret accepted by New.
const MinKeyLen = 16

var ErrShortKey = errors.New("fingerprint key must be at least 16 bytes")

// hkdfInfo is the HKDF context for the MAC key.
var hkdfInfo = []byte("pledge fingerprint v1")

type kind uint8

const (
	kindString kind = iota
	kindInt
	kindBool
)

// Part is a single typed value in a fingerprinted tuple.
type Part struct {
	kind kind
	s    string
	i    int64
}

// String returns a string part.
func String(s string) Part { return Part{kind: kindString, s: s} }

// Int returns a signed integer part.
func Int(i int64) Part { return Part{kind: kindInt, i: i} }

// Bool returns a boolean part.
func Bool(b bool) Part {
	p := Part{kind: kindBool}
	if b {
		p.i = 1
	}
	return p
}

// Fingerprinter computes fingerprints with a fixed derived key.
// It is safe for concurrent use.
type Fingerprinter struct {
	key []byte
}

// New derives a MAC key from secret. The same secret always yields the same
// fingerprints, across process restarts.
func New(secret []byte) (*Fingerprinter, error) {
	if len(secret) < MinKeyLen {
		return nil, ErrShortKey
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("failed to derive fingerprint key: %w", err)
	}
	return &Fingerprinter{key: key}, nil
}

// Sum returns the hex-encoded fingerprint of parts, in order.
func (f *Fingerprinter) Sum(parts ...Part) string {
	h, err := blake2b.New256(f.key)
	if err != nil {
		// Only possible for keys over 64 bytes; New always derives 32.
		panic(err)
	}
	h.Write(Encode(parts...))
	return hex.EncodeToString(h.Sum(nil))
}

// Encode returns the canonical encoding of parts: part i becomes protobuf
// field i+1 with a wire type that depends on the part's kind.
func Encode(parts ...Part) []byte {
	var b []byte
	for i, p := range parts {
		num := protowire.Number(i + 1)
		switch p.kind {
		case kindString:
			b = protowire.AppendTag(b, num, protowire.BytesType)
			b = protowire.AppendString(b, p.s)
		case kindInt:
			b = protowire.AppendTag(b, num, protowire.VarintType)
			b = protowire.AppendVarint(b, protowire.EncodeZigZag(p.i))
		case kindBool:
			// Fixed32 keeps booleans distinct from Int(0)/Int(1).
			b = protowire.AppendTag(b, num, protowire.Fixed32Type)
			b = protowire.AppendFixed32(b, uint32(p.i))
		}
	}
	return b
}

// Equal compares two fingerprints in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Commitment fingerprints a commitment's (text, deadline) pair.
func (f *Fingerprinter) Commitment(text string, deadline int64) string {
	return f.Sum(String(text), Int(deadline))
}

// Contribution fingerprints a contribution's (split, participant, amount) triple.
func (f *Fingerprinter) Contribution(splitID, participantID string, amount int64) string {
	return f.Sum(String(splitID), String(participantID), Int(amount))
}
