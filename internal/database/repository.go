package database

import (
	"github.com/outlivehq/mindmitra/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	account *models.AccountModel
	message *models.MessageModel
	flag    *models.FlagModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		account: models.NewAccount(db, logger),
		message: models.NewMessage(db, logger),
		flag:    models.NewFlag(db, logger),
	}
}

// Account returns the account model repository.
func (r *Repository) Account() *models.AccountModel {
	return r.account
}

// Message returns the chat message model repository.
func (r *Repository) Message() *models.MessageModel {
	return r.message
}

// Flag returns the flag event model repository.
func (r *Repository) Flag() *models.FlagModel {
	return r.flag
}
