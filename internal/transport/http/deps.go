package http

import (
	"github.com/brainbox-api/internal/application/reset"
	"github.com/brainbox-api/internal/infrastructure/smtp"
	"github.com/brainbox-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Challenges  reset.ChallengeStore
	ResetTokens reset.ResetTokenStore
	Users       reset.CredentialStore
	Deliveries  reset.DeliveryLog
	Mailer      smtp.Mailer
	Alerts      sns.AlertPublisher
}
