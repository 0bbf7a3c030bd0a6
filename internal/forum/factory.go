package forum

import (
	"fmt"

	"github.com/freeebooks/expiredbot/internal/config"
	"github.com/freeebooks/expiredbot/internal/domain"
)

// New selects the correct implementation based on the credential mode.
func New(creds config.Credentials, userAgent string) (domain.Forum, error) {
	switch creds.Mode {
	case "api":
		return NewAPIClient(creds.ID, creds.Secret, creds.Username, creds.Password, userAgent)
	case "public":
		if userAgent == "" {
			return nil, fmt.Errorf("a user agent is required for public mode")
		}
		return NewPublicClient(userAgent)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown BOT_MODE: %s (use 'api', 'public', or 'mock')", creds.Mode)
	}
}
