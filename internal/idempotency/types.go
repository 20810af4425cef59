package idempotency

import "time"

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record tracks one mutating request keyed by its Idempotency-Key header. The
// stored response is replayed to duplicate submissions instead of re-applying
// the side effect.
type Record struct {
	Key            string    `json:"idempotency_key"`
	Status         string    `json:"status"`
	SessionID      string    `json:"session_id,omitempty"`
	ResponseBody   string    `json:"response_body,omitempty"`
	ResponseStatus int       `json:"response_status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ExpiresAt      int64     `json:"expires_at"` // TTL epoch seconds
	Note           string    `json:"note,omitempty"`
}
