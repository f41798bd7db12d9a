package types

import (
	"time"

	"github.com/uptrace/bun"
)

// Message roles stored in the chat_messages table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents one conversation turn from the chat_messages table.
// Messages are immutable once written except for the late flag-metadata
// update applied by the moderation worker.
type ChatMessage struct {
	bun.BaseModel `bun:"table:chat_messages"`

	ID          string         `bun:",pk"       json:"id"`
	AccountCode string         `bun:",notnull"  json:"accountCode"`
	Role        string         `bun:",notnull"  json:"role"`
	Content     string         `bun:",notnull"  json:"content"`
	FlagType    string         `bun:",nullzero" json:"flagType,omitempty"`
	Confidence  float64        `bun:",nullzero" json:"confidence,omitempty"`
	Analysis    map[string]any `bun:",type:jsonb,nullzero" json:"analysis,omitempty"`
	CreatedAt   time.Time      `bun:",notnull"  json:"createdAt"`
}
