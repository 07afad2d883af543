package audit

import "time"

// Action describes what was done. PII reveals and CV downloads are the
// entries compliance reviews actually ask for; the rest give the trail
// enough context to reconstruct a session.
type Action string

const (
	ActionSearch      Action = "search"
	ActionRevealPII   Action = "reveal_pii"
	ActionDownloadCV  Action = "download_cv"
	ActionAIChat      Action = "ai_chat"
	ActionStageChange Action = "stage_change"
	ActionRejection   Action = "rejection"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    Action    `json:"action"`
	Detail    string    `json:"detail"`
}
