package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PartnerLevel string

const (
	PartnerLevelDiamond  PartnerLevel = "diamond"
	PartnerLevelPlatinum PartnerLevel = "platinum"
	PartnerLevelSilver   PartnerLevel = "silver"
)

var PartnerLevels = []PartnerLevel{PartnerLevelDiamond, PartnerLevelPlatinum, PartnerLevelSilver}

func (level PartnerLevel) Valid() bool {
	for _, l := range PartnerLevels {
		if l == level {
			return true
		}
	}
	return false
}

type Partner struct {
	bun.BaseModel `bun:"table:partners"`
	ID            int64         `bun:"id,pk,autoincrement" json:"id"`
	Name          string        `bun:"name,notnull" json:"name"`
	Description   *string       `bun:"description" json:"description"`
	Website       *string       `bun:"website" json:"website"`
	IsFeatured    *bool         `bun:"is_featured" json:"is_featured"`
	Level         *PartnerLevel `bun:"level" json:"level"`
	Image         *string       `bun:"image" json:"image"`
	Location      *string       `bun:"location" json:"location"`
	Specialties   []string      `bun:"specialties,type:jsonb" json:"specialties"`
	CreatedAt     time.Time     `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time     `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// PartnerPage is one page of the partner listing.
type PartnerPage struct {
	Partners []Partner
	Page     int
	PerPage  int
	Total    int
}

func (p *PartnerPage) LastPage() int {
	if p.Total == 0 || p.PerPage == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}
