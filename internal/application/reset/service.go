package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brainbox-api/internal/domain"
	"github.com/brainbox-api/internal/infrastructure/smtp"
	"github.com/brainbox-api/internal/infrastructure/sns"
	"github.com/brainbox-api/internal/pkg/id"
	"github.com/brainbox-api/internal/pkg/identity"
	"github.com/brainbox-api/internal/pkg/otp"
	pkgtoken "github.com/brainbox-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// ChallengeStore is the pending-challenge half of the OTP ledger.
type ChallengeStore interface {
	Put(ctx context.Context, identity, code string, ttl time.Duration) error
	Get(ctx context.Context, identity string) (*domain.PendingVerification, error)
	IncrementAttempts(ctx context.Context, identity string) (int, error)
	Delete(ctx context.Context, identity string) error
}

// ResetTokenStore is the reset-token half of the OTP ledger. Its key space
// is disjoint from the challenge store's.
type ResetTokenStore interface {
	Put(ctx context.Context, identity, token string, ttl time.Duration) error
	Get(ctx context.Context, identity string) (*domain.ResetToken, error)
	Delete(ctx context.Context, identity string) error
}

// CredentialStore owns the actual passwords. The reset flow only ever
// writes a new hash.
type CredentialStore interface {
	UpdatePasswordHash(ctx context.Context, email, hash string) error
}

// DeliveryLog records code-delivery attempts. Best-effort; failures are
// logged, never surfaced.
type DeliveryLog interface {
	Put(ctx context.Context, rec *domain.DeliveryRecord) error
}

// RequestCodeResult tells the caller how the code went out. When Delivered
// is false the code itself is included so the flow stays usable without a
// working mail channel.
type RequestCodeResult struct {
	Delivered bool
	Code      string
	Reason    string
}

// Service drives the three-step reset flow: request a code, verify it,
// consume the issued token to change the password.
type Service interface {
	RequestCode(ctx context.Context, rawIdentity string) (*RequestCodeResult, error)
	VerifyCode(ctx context.Context, rawIdentity, submittedCode string) (string, error)
	ConsumeToken(ctx context.Context, rawIdentity, token, newPassword string) error
	TestDelivery(ctx context.Context, rawIdentity string) error
}

// ServiceDeps wires the service. Mailer and Alerts may be nil; TTLs and
// MaxAttempts fall back to the design defaults when zero.
type ServiceDeps struct {
	Challenges  ChallengeStore
	ResetTokens ResetTokenStore
	Users       CredentialStore
	Deliveries  DeliveryLog
	Mailer      smtp.Mailer
	Alerts      sns.AlertPublisher

	// Verified is the delivery allow-list. Empty means every identity may
	// receive mail.
	Verified []string

	CodeTTL     time.Duration
	TokenTTL    time.Duration
	MaxAttempts int
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.CodeTTL == 0 {
		deps.CodeTTL = 10 * time.Minute
	}
	if deps.TokenTTL == 0 {
		deps.TokenTTL = 30 * time.Minute
	}
	if deps.MaxAttempts == 0 {
		deps.MaxAttempts = 5
	}
	return &service{deps: deps}
}

func (s *service) RequestCode(ctx context.Context, rawIdentity string) (*RequestCodeResult, error) {
	if err := identity.Check(rawIdentity); err != nil {
		return nil, err
	}
	key := identity.Normalize(rawIdentity)

	code, err := otp.NewCode()
	if err != nil {
		return nil, err
	}

	// The challenge is committed before the delivery attempt so a slow or
	// broken mail channel can never leave the ledger half-written.
	if err := s.deps.Challenges.Put(ctx, key, code, s.deps.CodeTTL); err != nil {
		return nil, err
	}

	res := s.deliver(ctx, key, code)
	return res, nil
}

// deliver makes a single synchronous delivery attempt and records the
// outcome. It never fails the surrounding call: every path returns a usable
// result, falling back to disclosing the code directly.
func (s *service) deliver(ctx context.Context, key, code string) *RequestCodeResult {
	var res *RequestCodeResult
	rec := &domain.DeliveryRecord{
		DeliveryID: id.New(),
		Identity:   key,
		Channel:    "email",
		CreatedAt:  time.Now().UTC(),
	}

	switch {
	case s.deps.Mailer == nil:
		res = &RequestCodeResult{Code: code, Reason: "no mail channel configured"}
		rec.Channel = "none"
		rec.Outcome = domain.DeliveryDisclosed
	case !s.recipientVerified(key):
		res = &RequestCodeResult{Code: code, Reason: "recipient not verified for delivery"}
		rec.Outcome = domain.DeliveryDisclosed
	default:
		err := s.deps.Mailer.SendEmail(key,
			"Your BrainBox password reset code",
			fmt.Sprintf("Your verification code is: %s\n\nThis code expires in %d minutes.", code, int(s.deps.CodeTTL.Minutes())))
		if err != nil {
			slog.Warn("code delivery failed, disclosing to caller", "identity", key, "err", err)
			s.alert(ctx, fmt.Sprintf("password-reset mail delivery failed for %s: %v", key, err))
			res = &RequestCodeResult{Code: code, Reason: "mail delivery failed"}
			rec.Outcome = domain.DeliveryFailed
		} else {
			res = &RequestCodeResult{Delivered: true}
			rec.Outcome = domain.DeliverySent
		}
	}
	rec.Reason = res.Reason

	if s.deps.Deliveries != nil {
		if err := s.deps.Deliveries.Put(ctx, rec); err != nil {
			slog.Warn("failed to record delivery attempt", "identity", key, "err", err)
		}
	}
	return res
}

func (s *service) VerifyCode(ctx context.Context, rawIdentity, submittedCode string) (string, error) {
	key := identity.Normalize(rawIdentity)
	submitted := strings.TrimSpace(submittedCode)

	v, err := s.deps.Challenges.Get(ctx, key)
	if err != nil {
		return "", err
	}
	now := time.Now().Unix()
	if now >= v.ExpiresAt {
		if err := s.deps.Challenges.Delete(ctx, key); err != nil {
			slog.Warn("failed to purge expired challenge", "identity", key, "err", err)
		}
		return "", fmt.Errorf("challenge for %s: %w", key, domain.ErrExpired)
	}
	if v.Attempts >= s.deps.MaxAttempts {
		if err := s.deps.Challenges.Delete(ctx, key); err != nil {
			slog.Warn("failed to purge exhausted challenge", "identity", key, "err", err)
		}
		return "", fmt.Errorf("challenge for %s: %w", key, domain.ErrTooManyAttempts)
	}

	// Exact string comparison; only the identity is ever normalized.
	if v.Code != submitted {
		n, err := s.deps.Challenges.IncrementAttempts(ctx, key)
		if err != nil {
			return "", err
		}
		remaining := s.deps.MaxAttempts - n
		if remaining < 0 {
			remaining = 0
		}
		return "", &domain.InvalidCodeError{AttemptsRemaining: remaining}
	}

	if err := s.deps.Challenges.Delete(ctx, key); err != nil {
		return "", err
	}
	tok, err := pkgtoken.NewResetToken()
	if err != nil {
		return "", err
	}
	if err := s.deps.ResetTokens.Put(ctx, key, tok, s.deps.TokenTTL); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *service) ConsumeToken(ctx context.Context, rawIdentity, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, domain.ErrValidation)
	}
	key := identity.Normalize(rawIdentity)

	t, err := s.deps.ResetTokens.Get(ctx, key)
	if err != nil {
		// Only a missing token means invalid-or-expired; storage failures
		// keep their own kind so callers see them as such.
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("reset token for %s: %w", key, domain.ErrInvalidOrExpired)
		}
		return err
	}
	if time.Now().Unix() >= t.ExpiresAt {
		if err := s.deps.ResetTokens.Delete(ctx, key); err != nil {
			slog.Warn("failed to purge expired reset token", "identity", key, "err", err)
		}
		return fmt.Errorf("reset token for %s: %w", key, domain.ErrInvalidOrExpired)
	}
	if t.Token != token {
		return fmt.Errorf("reset token for %s: %w", key, domain.ErrInvalidOrExpired)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.deps.Users.UpdatePasswordHash(ctx, key, string(hash)); err != nil {
		return err
	}
	// The token must go away on first use; a failed delete would leave it
	// replayable, so this error is surfaced.
	return s.deps.ResetTokens.Delete(ctx, key)
}

// TestDelivery probes the mail channel by sending a plain test message.
func (s *service) TestDelivery(_ context.Context, rawIdentity string) error {
	if err := identity.Check(rawIdentity); err != nil {
		return err
	}
	if s.deps.Mailer == nil {
		return fmt.Errorf("no mail channel configured: %w", domain.ErrValidation)
	}
	return s.deps.Mailer.SendEmail(identity.Normalize(rawIdentity),
		"BrainBox delivery test", "Mail channel is working.")
}

func (s *service) recipientVerified(key string) bool {
	if len(s.deps.Verified) == 0 {
		return true
	}
	for _, v := range s.deps.Verified {
		if identity.Normalize(v) == key {
			return true
		}
	}
	return false
}

func (s *service) alert(ctx context.Context, message string) {
	if s.deps.Alerts == nil {
		return
	}
	if err := s.deps.Alerts.PublishAlert(ctx, message); err != nil {
		slog.Warn("failed to publish ops alert", "err", err)
	}
}
