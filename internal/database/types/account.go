package types

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// ErrAccountNotFound is returned when an access code does not exist.
var ErrAccountNotFound = errors.New("account not found")

// Account represents an access-code account from the accounts table.
// Accounts are created out-of-band; this service only reads them and
// flips IsActive when the flag policy restricts an account.
type Account struct {
	bun.BaseModel `bun:"table:accounts"`

	Code         string    `bun:",pk"             json:"code"`
	IsActive     bool      `bun:",notnull"        json:"isActive"`
	CreatedAt    time.Time `bun:",notnull"        json:"createdAt"`
	LastActiveAt time.Time `bun:",nullzero"       json:"lastActiveAt"`
}
