package services

import (
	"fmt"
	"time"
)

const (
	CONFIG_SERVER_MODE = "API_MODE"

	SERVER_MODE_DEBUG      = "debug"
	SERVER_MODE_PRODUCTION = "production"

	PARTNER_DEFAULT_PER_PAGE = 15
	PARTNER_MAX_PER_PAGE     = 100

	API_RATE_LIMIT_PER_MINUTE = 60

	DEFAULT_TOKEN_NAME = "API Token"

	CACHE_TTL_5_MINS = 5 * time.Minute
)

// db
func DBKeyPartner(partnerID int64) string {
	return fmt.Sprintf("partner:%d", partnerID)
}

func LimitKeyToken(tokenID int64) string {
	return fmt.Sprintf("limit:token:%d", tokenID)
}
