package lottery

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// RandomSource yields indexes in [0, n).
type RandomSource interface {
	Intn(n int) (int, error)
}

var errNonPositiveBound = errors.New("random bound must be positive")

type cryptoSource struct{}

// CryptoSource draws from crypto/rand. Draws cannot be predicted by callers.
func CryptoSource() RandomSource {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errNonPositiveBound
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}

// ScopedSource is a RandomSource that can derive an independent stream for a
// single lottery. PickWinner draws from the derived stream when available.
type ScopedSource interface {
	RandomSource
	ForLottery(id string) RandomSource
}

// HashSource is a deterministic source: draw k is the first 8 bytes of
// sha256("<seed>:<k>") reduced mod n, or sha256("<seed>:<lottery id>:<k>")
// once scoped to a lottery. Publishing sha256(seed) before a draw and the
// seed after it lets anyone replay the selection.
type HashSource struct {
	mu      sync.Mutex
	seed    []byte
	scope   string
	counter uint64
}

// NewHashSource builds a hash-chain source over seed.
func NewHashSource(seed []byte) *HashSource {
	s := make([]byte, len(seed))
	copy(s, seed)
	return &HashSource{seed: s}
}

// ForLottery returns a fresh stream bound to lottery id. Lottery ids are
// unique, so a restart never replays the draws of an earlier lottery.
func (h *HashSource) ForLottery(id string) RandomSource {
	return &HashSource{seed: h.seed, scope: id}
}

// Commitment returns the hex sha256 of the seed.
func (h *HashSource) Commitment() string {
	sum := sha256.Sum256(h.seed)
	return fmt.Sprintf("%x", sum[:])
}

func (h *HashSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, errNonPositiveBound
	}
	h.mu.Lock()
	k := h.counter
	h.counter++
	h.mu.Unlock()

	msg := fmt.Sprintf("%s:%d", h.seed, k)
	if h.scope != "" {
		msg = fmt.Sprintf("%s:%s:%d", h.seed, h.scope, k)
	}
	sum := sha256.Sum256([]byte(msg))
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n)), nil
}
