package dupes

import (
	"context"
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/time/rate"

	"github.com/bamsammich/doopie/internal/platform"
)

// Algorithm names a content digest. Every supported algorithm produces 256
// bits. Two files with equal digests are treated as identical without a
// byte comparison; with either algorithm an accidental collision is
// negligible, but it is an accepted risk rather than a proof.
type Algorithm string

const (
	BLAKE3 Algorithm = "blake3"
	SHA256 Algorithm = "sha256"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = BLAKE3

// ParseAlgorithm resolves a user-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", BLAKE3:
		return BLAKE3, nil
	case SHA256, "sha-256":
		return SHA256, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q (use blake3 or sha256)", s)
	}
}

func (a Algorithm) newHash() hash.Hash {
	if a == SHA256 {
		return sha256.New()
	}
	return blake3.New()
}

// HashFile digests the full content of the file at path. It returns the
// digest and the number of bytes hashed.
func HashFile(path string, alg Algorithm) (Digest, int64, error) {
	return hashFile(context.Background(), path, alg, nil)
}

// hashFile is HashFile with reads throttled by lim when it is non-nil.
func hashFile(ctx context.Context, path string, alg Algorithm, lim *rate.Limiter) (Digest, int64, error) {
	h := alg.newHash()
	n, err := platform.ReadAllLimited(ctx, path, h, lim)
	if err != nil {
		return Digest{}, n, fmt.Errorf("hash %s: %w", path, err)
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d, n, nil
}
