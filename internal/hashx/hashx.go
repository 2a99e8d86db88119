// Package hashx provides the single 64-bit, non-cryptographic, deterministic
// hash used everywhere tonearm needs a stable cache key: SourceHash, tag
// mapping signatures, archive/procedural-cover signatures, and the URL-salt
// combination. Every hash in the system flows through this package so that
// persisted byte encodings never drift between call sites.
package hashx

import (
	"encoding/base64"
	"encoding/binary"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Hash is a 64-bit content fingerprint.
type Hash uint64

// Bytes hashes an in-memory byte slice.
func Bytes(data []byte) Hash {
	return Hash(xxhash.Sum64(data))
}

// String hashes a string without an intermediate copy.
func String(s string) Hash {
	return Hash(xxhash.Sum64String(s))
}

// File streams a file's contents through the hasher without loading it
// entirely into memory, mirroring how SourceHash is computed over arbitrarily
// large source audio/image files.
func File(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return Hash(h.Sum64()), nil
}

// Combiner accumulates a deterministic, order-sensitive sequence of inputs
// into a single signature. Used for archive signatures, procedural-cover
// signatures, and tag-mapping signatures, all of which are hashes over an
// ordered dependency graph (§4.5, §4.6, §4.7).
type Combiner struct {
	h *xxhash.Digest
}

// NewCombiner starts a new signature accumulation.
func NewCombiner() *Combiner {
	return &Combiner{h: xxhash.New()}
}

// WriteString feeds a string into the signature, length-prefixed so that
// ("ab","c") and ("a","bc") never collide.
func (c *Combiner) WriteString(s string) *Combiner {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	c.h.Write(lenBuf[:])
	c.h.Write([]byte(s))
	return c
}

// WriteUint64 feeds a fixed-width integer into the signature.
func (c *Combiner) WriteUint64(v uint64) *Combiner {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	c.h.Write(buf[:])
	return c
}

// WriteHash feeds a previously computed Hash into the signature.
func (c *Combiner) WriteHash(h Hash) *Combiner {
	return c.WriteUint64(uint64(h))
}

// Sum returns the accumulated signature.
func (c *Combiner) Sum() Hash {
	return Hash(c.h.Sum64())
}

// URLSafeBase64 encodes a Hash as a short, filesystem- and URL-safe string,
// used both for manifest filenames (`{base64(signature)}.{schema}.msgpack`)
// and for the hashed path segments embedded in asset URLs (§4.9).
func URLSafeBase64(h Hash) string {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(h))
	return base64.RawURLEncoding.EncodeToString(buf[:])
}
