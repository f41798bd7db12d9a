package types

import (
	"time"

	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// FlagEvent represents a persisted safety concern from the flag_events table.
// Rows are append-only; restriction state is derived from them at query time.
type FlagEvent struct {
	bun.BaseModel `bun:"table:flag_events"`

	ID          int64          `bun:",pk,autoincrement" json:"id"`
	AccountCode string         `bun:",notnull"          json:"accountCode"`
	Category    string         `bun:",notnull"          json:"category"`
	Confidence  float64        `bun:",notnull"          json:"confidence"`
	Source      string         `bun:",notnull"          json:"source"`
	RawText     string         `bun:",notnull"          json:"rawText"`
	Analysis    map[string]any `bun:",type:jsonb,nullzero" json:"analysis,omitempty"`
	CreatedAt   time.Time      `bun:",notnull"          json:"createdAt"`
}

// NewFlagEvent builds a flag event for the given account and detection result.
func NewFlagEvent(
	accountCode string, category enum.CrisisCategory, confidence float64,
	source enum.FlagSource, rawText string, analysis map[string]any,
) *FlagEvent {
	return &FlagEvent{
		AccountCode: accountCode,
		Category:    category.String(),
		Confidence:  confidence,
		Source:      source.String(),
		RawText:     rawText,
		Analysis:    analysis,
		CreatedAt:   time.Now().UTC(),
	}
}
