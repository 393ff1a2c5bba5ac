// Package account orchestrates the registration, login and email
// verification flow around the secure record store. It is the only place
// where validation, rate limiting, the keeper and the email collaborator are
// sequenced together; each of those components stays independent.
package account

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waxworks/vinylvault/internal/common"
	"github.com/waxworks/vinylvault/internal/cryptox"
	"github.com/waxworks/vinylvault/internal/keeper"
	"github.com/waxworks/vinylvault/internal/kvstore"
	"github.com/waxworks/vinylvault/internal/logging"
	"github.com/waxworks/vinylvault/internal/mailer"
	"github.com/waxworks/vinylvault/internal/validation"
)

// Rate limit policy. The generic default (5 per minute) is tightened here:
// registration is throttled per email, login per submitted identifier.
const (
	RegistrationLimit  = 3
	RegistrationWindow = time.Hour
	LoginLimit         = 5
	LoginWindow        = time.Hour
)

const (
	verificationKey = keeper.Prefix + "verification"

	// VerificationTTL is how long an emailed verification token stays
	// redeemable.
	VerificationTTL = 24 * time.Hour
)

// RegistrationInput is the raw form submission.
type RegistrationInput struct {
	Fields          map[string]string
	TermsAccepted   bool
	PrivacyAccepted bool
}

// RegisterResult reports a registration attempt. Exactly one of the failure
// facets (RateLimited, FieldErrors, Err) is populated on failure.
type RegisterResult struct {
	Success     bool
	SessionID   string
	EmailSent   bool
	FieldErrors []validation.FieldError
	RateLimited bool
	RetryAfter  time.Time
	Message     string
	Err         error
}

// LoginResult reports a login attempt.
type LoginResult struct {
	Success     bool
	SessionID   string
	Record      *keeper.UserRecord
	RateLimited bool
	RetryAfter  time.Time
	Message     string
	Err         error
}

// VerifyResult reports an email verification attempt.
type VerifyResult struct {
	Success bool
	Message string
	Err     error
}

// verificationRecord is persisted under the storage namespace while a
// verification is pending; only the token's hash is stored.
type verificationRecord struct {
	TokenHash string    `json:"tokenHash"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service wires the registration flow together. All collaborators are
// injected; the service holds no ambient state.
type Service struct {
	keeper    *keeper.Keeper
	validator *validation.Validator
	limiter   *validation.RateLimiter
	sender    mailer.Sender
	store     kvstore.Store
	log       logging.Logger
	now       func() time.Time
}

// New constructs the account service.
func New(k *keeper.Keeper, v *validation.Validator, rl *validation.RateLimiter,
	sender mailer.Sender, store kvstore.Store, log logging.Logger) *Service {
	return &Service{
		keeper:    k,
		validator: v,
		limiter:   rl,
		sender:    sender,
		store:     store,
		log:       log.With("component", "account"),
		now:       time.Now,
	}
}

// Register runs the full registration sequence: rate limit, validate,
// store encrypted record, issue a verification token, send the verification
// email. A failed email send does not roll back the stored record; it is
// reported through EmailSent so the caller can offer a resend.
func (s *Service) Register(ctx context.Context, in RegistrationInput) RegisterResult {
	email := strings.ToLower(strings.TrimSpace(in.Fields["email"]))

	rl, err := s.limiter.Check(ctx, email, "registration", RegistrationLimit, RegistrationWindow)
	if err != nil {
		s.log.Error(ctx, "rate limiter unavailable", "error", err)
		return RegisterResult{Message: "registration is temporarily unavailable", Err: err}
	}
	if !rl.Allowed {
		return RegisterResult{
			RateLimited: true,
			RetryAfter:  rl.ResetTime,
			Message:     "too many registration attempts, try again later",
		}
	}

	vres := s.validator.ValidateRegistration(in.Fields, in.TermsAccepted, in.PrivacyAccepted)
	if !vres.IsValid {
		return RegisterResult{
			FieldErrors: vres.Errors,
			Message:     "please correct the highlighted fields",
			Err:         common.ErrValidation,
		}
	}

	rec := recordFromSanitized(vres.Sanitized, s.now())
	password := []byte(vres.Sanitized["password"])
	defer common.WipeByteArray(password)

	stored := s.keeper.StoreUserData(ctx, rec, password)
	if !stored.Success {
		return RegisterResult{Message: stored.Message, Err: stored.Err}
	}

	token, err := s.issueVerification(ctx, rec.Sensitive.Email)
	if err != nil {
		s.log.Error(ctx, "could not issue verification token", "error", err)
		return RegisterResult{Success: true, SessionID: stored.SessionID, Message: "registered, but verification could not be started"}
	}

	emailSent := true
	if err := s.sender.Send(ctx, mailer.Message{
		To:       rec.Sensitive.Email,
		ToName:   rec.Sensitive.FirstName + " " + rec.Sensitive.LastName,
		Template: "email_verification",
		Params: map[string]string{
			"first_name": rec.Sensitive.FirstName,
			"token":      token,
		},
	}); err != nil {
		s.log.Error(ctx, "verification email failed", "error", err)
		emailSent = false
	}

	s.log.Info(ctx, "registration complete", "email_sent", emailSent)
	return RegisterResult{Success: true, SessionID: stored.SessionID, EmailSent: emailSent}
}

// recordFromSanitized builds the transient UserRecord from validated input.
func recordFromSanitized(f map[string]string, now time.Time) *keeper.UserRecord {
	return &keeper.UserRecord{
		Sensitive: keeper.SensitiveData{
			FirstName:        f["firstName"],
			LastName:         f["lastName"],
			Email:            f["email"],
			Phone:            f["phone"],
			ShippingAddress:  f["shippingAddress"],
			IBAN:             f["iban"],
			BIC:              f["bic"],
			BankAccountOwner: f["bankAccountOwner"],
		},
		NonSensitive: keeper.NonSensitiveData{
			RegistrationDate: now,
			TermsAccepted:    true,
			PrivacyAccepted:  true,
			EmailVerified:    false,
			AccountStatus:    keeper.StatusPendingVerification,
		},
	}
}

// issueVerification stores a hashed verification token and returns the
// plaintext token for the email.
func (s *Service) issueVerification(ctx context.Context, email string) (string, error) {
	token, err := cryptox.RandomToken(32)
	if err != nil {
		return "", err
	}

	rec := verificationRecord{
		TokenHash: cryptox.Hash(token),
		Email:     email,
		CreatedAt: s.now(),
		ExpiresAt: s.now().Add(VerificationTTL),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, verificationKey, data); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyEmail redeems a verification token: on a hash match inside the TTL
// the stored record flips to verified/active and the token is dropped. The
// password is needed because flipping the flag re-encrypts the record.
func (s *Service) VerifyEmail(ctx context.Context, token string, password []byte) VerifyResult {
	raw, err := s.store.Get(ctx, verificationKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return VerifyResult{Message: "no pending verification", Err: common.ErrInvalidToken}
		}
		return VerifyResult{Message: "verification is temporarily unavailable", Err: err}
	}

	var rec verificationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return VerifyResult{Message: "no pending verification", Err: common.ErrInvalidToken}
	}

	if s.now().After(rec.ExpiresAt) {
		_ = s.store.Remove(ctx, verificationKey)
		return VerifyResult{Message: "verification link expired, request a new one", Err: common.ErrTokenExpired}
	}

	if subtle.ConstantTimeCompare([]byte(cryptox.Hash(token)), []byte(rec.TokenHash)) == 0 {
		return VerifyResult{Message: "invalid verification link", Err: common.ErrInvalidToken}
	}

	updated := s.keeper.UpdateRecord(ctx, password, func(r *keeper.UserRecord) {
		r.NonSensitive.EmailVerified = true
		r.NonSensitive.AccountStatus = keeper.StatusActive
	})
	if !updated.Success {
		return VerifyResult{Message: updated.Message, Err: updated.Err}
	}

	if err := s.store.Remove(ctx, verificationKey); err != nil {
		s.log.Warn(ctx, "could not drop redeemed verification token", "error", err)
	}

	s.log.Info(ctx, "email verified")
	return VerifyResult{Success: true}
}

// Login rate-limits the attempt, retrieves the record with the supplied
// password, and confirms the submitted email matches the stored one.
// All credential failures surface as the same generic message.
func (s *Service) Login(ctx context.Context, email string, password []byte) LoginResult {
	identifier := strings.ToLower(strings.TrimSpace(email))

	rl, err := s.limiter.Check(ctx, identifier, "login", LoginLimit, LoginWindow)
	if err != nil {
		s.log.Error(ctx, "rate limiter unavailable", "error", err)
		return LoginResult{Message: "login is temporarily unavailable", Err: err}
	}
	if !rl.Allowed {
		return LoginResult{
			RateLimited: true,
			RetryAfter:  rl.ResetTime,
			Message:     "too many login attempts, try again later",
		}
	}

	res := s.keeper.RetrieveUserData(ctx, password)
	if !res.Success {
		if res.NotFound {
			return LoginResult{Message: "no account found on this device", Err: common.ErrNotFound}
		}
		return LoginResult{Message: "login failed, check your credentials", Err: res.Err}
	}

	if !strings.EqualFold(res.Record.Sensitive.Email, identifier) {
		return LoginResult{Message: "login failed, check your credentials", Err: common.ErrUnauthorized}
	}

	session, err := s.keeper.GetSession(ctx)
	if err != nil {
		return LoginResult{Message: "login failed, check your credentials", Err: err}
	}

	s.log.Info(ctx, "login successful")
	return LoginResult{Success: true, SessionID: session.SessionID, Record: res.Record}
}

// RequestExport serves a data-portability request by delegating to the
// keeper's export path.
func (s *Service) RequestExport(ctx context.Context, password []byte) keeper.ExportResult {
	return s.keeper.ExportUserData(ctx, password)
}

// Unregister deletes the stored account and any pending verification.
func (s *Service) Unregister(ctx context.Context) error {
	if err := s.store.Remove(ctx, verificationKey); err != nil {
		s.log.Warn(ctx, "could not drop verification token", "error", err)
	}
	res := s.keeper.DeleteUserData(ctx)
	if !res.Success {
		return fmt.Errorf("delete failed: %w", res.Err)
	}
	return nil
}
