package migrations

import (
	"context"
	"fmt"

	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Account)(nil),
			(*types.ChatMessage)(nil),
			(*types.FlagEvent)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		// Flag counting and message history are both windowed per-account scans.
		indexes := []struct {
			name    string
			table   string
			columns string
		}{
			{"idx_flag_events_account_created", "flag_events", "account_code, created_at"},
			{"idx_chat_messages_account_created", "chat_messages", "account_code, created_at"},
		}

		for _, idx := range indexes {
			_, err := db.ExecContext(ctx, fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
				idx.name, idx.table, idx.columns,
			))
			if err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.name, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []string{"flag_events", "chat_messages", "accounts"}
		for _, table := range tables {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}

		return nil
	})
}
