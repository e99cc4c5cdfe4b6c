package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AbilityViewPartners = "view-partners"
	AbilityEditPartners = "edit-partners"
	AbilityAll          = "*"
)

// Abilities lists what an operator may grant from the admin CLI.
var Abilities = []string{AbilityViewPartners, AbilityEditPartners}

// PersonalAccessToken is an API token owned by a user. Token holds the
// sha256 hex digest of the secret, never the secret itself.
type PersonalAccessToken struct {
	bun.BaseModel `bun:"table:personal_access_tokens"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64      `bun:"user_id,notnull" json:"user_id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Token         string     `bun:"token,notnull" json:"-"`
	Abilities     []string   `bun:"abilities,type:jsonb" json:"abilities"`
	LastUsedAt    *time.Time `bun:"last_used_at" json:"last_used_at"`
	ExpiresAt     *time.Time `bun:"expires_at" json:"expires_at"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (t *PersonalAccessToken) Can(ability string) bool {
	for _, a := range t.Abilities {
		if a == AbilityAll || a == ability {
			return true
		}
	}
	return false
}

func (t *PersonalAccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}
