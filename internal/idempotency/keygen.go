package idempotency

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewKey returns a fresh idempotency key for a mutating request. It must never
// fail: if the crypto random source is unavailable, it falls back to a
// high-resolution timestamp plus a random suffix.
func NewKey() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	ts := strconv.FormatInt(time.Now().UnixNano(), 36)
	return fmt.Sprintf("ik_%s_%08x", ts, rand.Uint32())
}
