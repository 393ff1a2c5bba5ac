// Package keeper implements the secure record store: the only component
// allowed to read or write the persisted user record and session. It
// enforces the integrity and session-freshness invariants around the
// cryptographic primitives and the injected key-value backend.
//
// The stored record moves between exactly two observable states, ABSENT and
// STORED. A store operation fully replaces any prior envelope; there is no
// partial state a caller can see.
package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waxworks/vinylvault/internal/common"
	"github.com/waxworks/vinylvault/internal/cryptox"
	"github.com/waxworks/vinylvault/internal/events"
	"github.com/waxworks/vinylvault/internal/kvstore"
	"github.com/waxworks/vinylvault/internal/logging"
	"github.com/waxworks/vinylvault/internal/validation"
)

// Prefix namespaces every key the keeper owns in the shared store.
const Prefix = "vinylvault_"

const (
	userDataKey = Prefix + "user_data"
	sessionKey  = Prefix + "user_session"
	probeKey    = Prefix + "storage_probe"

	// EnvelopeVersion tags the persisted schema.
	EnvelopeVersion = "1.0"

	// ExportFormat tags export bundles.
	ExportFormat = "vinylvault-export"
)

const (
	// DefaultSessionTTL is how long a session stays valid after its last
	// activity.
	DefaultSessionTTL = 24 * time.Hour

	// DefaultRetention is the age past which persisted items are swept on
	// initialization.
	DefaultRetention = 30 * 24 * time.Hour
)

// Messages shown to end users. Deliberately generic: internal error detail
// goes to the log, never to the user.
const (
	msgStoreFailed     = "could not save your data, please try again"
	msgRetrieveFailed  = "could not read your data"
	msgNoData          = "no stored account data"
	msgIntegrityFailed = "stored data failed the integrity check"
	msgWrongPassword   = "could not decrypt your data, check your password"
	msgInvalidRecord   = "account data is incomplete or invalid"
)

// Keeper is the secure record store. Construct it with New; the zero value
// is not usable.
type Keeper struct {
	store      kvstore.Store
	hub        *events.Hub
	log        logging.Logger
	now        func() time.Time
	sessionTTL time.Duration
	retention  time.Duration
}

// Option adjusts Keeper construction; used mainly by tests.
type Option func(*Keeper)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(k *Keeper) { k.now = now }
}

// WithSessionTTL overrides the session freshness window.
func WithSessionTTL(ttl time.Duration) Option {
	return func(k *Keeper) { k.sessionTTL = ttl }
}

// WithRetention overrides the sweep age threshold.
func WithRetention(d time.Duration) Option {
	return func(k *Keeper) { k.retention = d }
}

// New constructs a Keeper over the given storage backend, event hub and
// logger. All dependencies are explicit; the keeper holds no ambient state.
func New(store kvstore.Store, hub *events.Hub, log logging.Logger, opts ...Option) *Keeper {
	k := &Keeper{
		store:      store,
		hub:        hub,
		log:        log.With("component", "keeper"),
		now:        time.Now,
		sessionTTL: DefaultSessionTTL,
		retention:  DefaultRetention,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Initialize probes that the backend is writable, sweeps expired items, and
// makes sure a session record exists. It never fails the surrounding
// application: problems are logged and reported as a boolean so the caller
// can degrade to a no-account mode.
func (k *Keeper) Initialize(ctx context.Context) bool {
	if err := k.probeStorage(ctx); err != nil {
		k.log.Error(ctx, "storage backend is not writable", "error", err)
		return false
	}

	if err := k.sweepExpired(ctx); err != nil {
		k.log.Warn(ctx, "expiry sweep incomplete", "error", err)
	}

	if _, err := k.GetSession(ctx); errors.Is(err, common.ErrNotFound) {
		if err := k.newSession(ctx, false); err != nil {
			k.log.Warn(ctx, "could not create initial session", "error", err)
		}
	} else if err != nil {
		k.log.Warn(ctx, "could not read session", "error", err)
	}

	return true
}

func (k *Keeper) probeStorage(ctx context.Context) error {
	if err := k.store.Set(ctx, probeKey, []byte("ok")); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if err := k.store.Remove(ctx, probeKey); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

// sweepExpired removes every item under the keeper prefix whose storedAt (or
// createdAt, for sessions) timestamp is older than the retention period.
func (k *Keeper) sweepExpired(ctx context.Context) error {
	keys, err := k.store.Keys(ctx)
	if err != nil {
		return err
	}

	cutoff := k.now().Add(-k.retention)

	for _, key := range keys {
		if !strings.HasPrefix(key, Prefix) {
			continue
		}
		raw, err := k.store.Get(ctx, key)
		if err != nil {
			continue
		}

		var stamps struct {
			StoredAt  time.Time `json:"storedAt"`
			CreatedAt time.Time `json:"createdAt"`
		}
		if err := json.Unmarshal(raw, &stamps); err != nil {
			continue
		}

		ts := stamps.StoredAt
		if ts.IsZero() {
			ts = stamps.CreatedAt
		}
		if ts.IsZero() || !ts.Before(cutoff) {
			continue
		}

		if err := k.store.Remove(ctx, key); err != nil {
			k.log.Warn(ctx, "could not remove expired item", "key", key, "error", err)
			continue
		}
		k.log.Info(ctx, "removed expired item", "key", key, "stored_at", ts)
	}
	return nil
}

// validateRecord is the second, stricter structural gate applied right
// before encryption: every sensitive field except the optional phone must be
// a non-empty string, and email, IBAN and BIC must pass their format checks.
func validateRecord(rec *UserRecord) error {
	s := rec.Sensitive
	required := map[string]string{
		"firstName":        s.FirstName,
		"lastName":         s.LastName,
		"email":            s.Email,
		"shippingAddress":  s.ShippingAddress,
		"iban":             s.IBAN,
		"bic":              s.BIC,
		"bankAccountOwner": s.BankAccountOwner,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: missing field %s", common.ErrValidation, name)
		}
	}

	if !validation.ValidateEmail(s.Email) {
		return fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if !validation.ValidateIBAN(s.IBAN) {
		return fmt.Errorf("%w: invalid iban", common.ErrValidation)
	}
	if !validation.ValidateBIC(s.BIC) {
		return fmt.Errorf("%w: invalid bic", common.ErrValidation)
	}
	return nil
}

// StoreUserData encrypts the record's sensitive fields and persists the
// resulting envelope as the sole stored record, replacing any prior one.
// On success the session is activated and its id returned.
func (k *Keeper) StoreUserData(ctx context.Context, rec *UserRecord, password []byte) StoreResult {
	if err := validateRecord(rec); err != nil {
		k.log.Warn(ctx, "record rejected by structural validation", "error", err)
		return StoreResult{Message: msgInvalidRecord, Err: err}
	}

	env, err := k.buildEnvelope(rec, password)
	if err != nil {
		k.log.Error(ctx, "could not build storage envelope", "error", err)
		return StoreResult{Message: msgStoreFailed, Err: err}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return StoreResult{Message: msgStoreFailed, Err: err}
	}
	if err := k.store.Set(ctx, userDataKey, data); err != nil {
		k.log.Error(ctx, "could not persist envelope", "error", err)
		return StoreResult{Message: msgStoreFailed, Err: fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)}
	}

	sessionID, err := k.touchSession(ctx)
	if err != nil {
		k.log.Warn(ctx, "stored record but could not refresh session", "error", err)
	}

	k.hub.Publish(events.Event{Kind: events.KindStored, At: k.now()})
	k.log.Info(ctx, "user data stored")

	return StoreResult{Success: true, SessionID: sessionID}
}

// buildEnvelope assembles the persisted unit: encrypted sensitive payload,
// clear non-sensitive fields, password digest, descriptive metadata, and the
// integrity hash covering all of it.
func (k *Keeper) buildEnvelope(rec *UserRecord, password []byte) (*StorageEnvelope, error) {
	blob, err := cryptox.Encrypt(rec.Sensitive, password)
	if err != nil {
		return nil, err
	}

	now := k.now()
	env := &StorageEnvelope{
		EncryptedData:    blob,
		NonSensitiveData: rec.NonSensitive,
		HashedPassword:   cryptox.Hash(string(password)),
		SecurityMetadata: SecurityMetadata{
			Algorithm:   cryptox.AlgorithmName,
			KDF:         cryptox.KDFName,
			Iterations:  cryptox.Iterations,
			SaltLength:  cryptox.SaltSize,
			IVLength:    cryptox.NonceSize,
			TagLength:   cryptox.TagSize,
			EncryptedAt: now,
		},
		StoredAt: now,
		Version:  EnvelopeVersion,
	}

	// The hash covers the whole envelope with DataHash itself empty; the
	// exact same serialization runs again at verification time.
	hash, err := cryptox.DataHash(env)
	if err != nil {
		return nil, err
	}
	env.DataHash = hash
	return env, nil
}

func verifyEnvelopeHash(env *StorageEnvelope) error {
	withoutHash := *env
	withoutHash.DataHash = ""

	expected, err := cryptox.DataHash(&withoutHash)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrIntegrity, err)
	}
	if expected != env.DataHash {
		return common.ErrIntegrity
	}
	return nil
}

func (k *Keeper) loadEnvelope(ctx context.Context) (*StorageEnvelope, error) {
	raw, err := k.store.Get(ctx, userDataKey)
	if err != nil {
		return nil, err
	}
	var env StorageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// An unparseable envelope is corrupted stored data.
		return nil, fmt.Errorf("%w: %v", common.ErrIntegrity, err)
	}
	return &env, nil
}

// RetrieveUserData loads the envelope, verifies its integrity hash, and only
// then decrypts the sensitive payload with the supplied password. A wrong
// password and corrupted ciphertext produce the same failure.
func (k *Keeper) RetrieveUserData(ctx context.Context, password []byte) RetrieveResult {
	env, err := k.loadEnvelope(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return RetrieveResult{NotFound: true, Message: msgNoData, Err: common.ErrNotFound}
		}
		k.log.Error(ctx, "could not load envelope", "error", err)
		if errors.Is(err, common.ErrIntegrity) {
			return RetrieveResult{Message: msgIntegrityFailed, Err: err}
		}
		return RetrieveResult{Message: msgRetrieveFailed, Err: err}
	}

	if err := verifyEnvelopeHash(env); err != nil {
		k.log.Error(ctx, "envelope integrity check failed")
		return RetrieveResult{Message: msgIntegrityFailed, Err: err}
	}

	var sensitive SensitiveData
	if err := cryptox.Decrypt(env.EncryptedData, password, &sensitive); err != nil {
		k.log.Warn(ctx, "envelope decryption failed")
		return RetrieveResult{Message: msgWrongPassword, Err: err}
	}

	if _, err := k.touchSession(ctx); err != nil {
		k.log.Warn(ctx, "retrieved record but could not refresh session", "error", err)
	}

	return RetrieveResult{
		Success: true,
		Record: &UserRecord{
			Sensitive:    sensitive,
			NonSensitive: env.NonSensitiveData,
		},
	}
}

// UpdateUserData retrieves the current record with the supplied password,
// overrides the named sensitive fields from partial, and stores the merged
// record. The password must be the one that encrypted the existing record.
func (k *Keeper) UpdateUserData(ctx context.Context, partial map[string]string, password []byte) StoreResult {
	return k.UpdateRecord(ctx, password, func(rec *UserRecord) {
		s := &rec.Sensitive
		for name, value := range partial {
			switch name {
			case "firstName":
				s.FirstName = value
			case "lastName":
				s.LastName = value
			case "email":
				s.Email = value
			case "phone":
				s.Phone = value
			case "shippingAddress":
				s.ShippingAddress = value
			case "iban":
				s.IBAN = value
			case "bic":
				s.BIC = value
			case "bankAccountOwner":
				s.BankAccountOwner = value
			}
		}
	})
}

// UpdateRecord is the retrieve-then-merge-then-store primitive behind every
// update: mutate receives the decrypted record and may change any field,
// sensitive or not. Used by the account flow to flip verification state.
func (k *Keeper) UpdateRecord(ctx context.Context, password []byte, mutate func(rec *UserRecord)) StoreResult {
	res := k.RetrieveUserData(ctx, password)
	if !res.Success {
		return StoreResult{Message: res.Message, Err: res.Err}
	}

	mutate(res.Record)

	out := k.StoreUserData(ctx, res.Record, password)
	if out.Success {
		k.hub.Publish(events.Event{Kind: events.KindUpdated, At: k.now()})
	}
	return out
}

// DeleteUserData removes the envelope and clears the session. It is
// idempotent: deleting when nothing is stored is a success.
func (k *Keeper) DeleteUserData(ctx context.Context) DeleteResult {
	if err := k.store.Remove(ctx, userDataKey); err != nil {
		k.log.Error(ctx, "could not remove envelope", "error", err)
		return DeleteResult{Message: msgStoreFailed, Err: fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)}
	}
	if err := k.ClearSession(ctx); err != nil {
		k.log.Warn(ctx, "could not clear session", "error", err)
	}

	k.hub.Publish(events.Event{Kind: events.KindDeleted, At: k.now()})
	k.log.Info(ctx, "user data deleted")

	return DeleteResult{Success: true}
}

// GetUserDataMetadata returns the envelope's clear fields without attempting
// decryption, so callers can probe for an account without the password.
func (k *Keeper) GetUserDataMetadata(ctx context.Context) MetadataResult {
	env, err := k.loadEnvelope(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return MetadataResult{NotFound: true, Message: msgNoData, Err: common.ErrNotFound}
		}
		k.log.Error(ctx, "could not load envelope", "error", err)
		return MetadataResult{Message: msgRetrieveFailed, Err: err}
	}

	return MetadataResult{
		Success: true,
		Metadata: &Metadata{
			NonSensitive:     env.NonSensitiveData,
			SecurityMetadata: env.SecurityMetadata,
			StoredAt:         env.StoredAt,
			Version:          env.Version,
		},
	}
}

// ExportUserData retrieves the record (requiring the password) and wraps it
// with an export timestamp, version and format tag.
func (k *Keeper) ExportUserData(ctx context.Context, password []byte) ExportResult {
	res := k.RetrieveUserData(ctx, password)
	if !res.Success {
		return ExportResult{NotFound: res.NotFound, Message: res.Message, Err: res.Err}
	}

	return ExportResult{
		Success: true,
		Bundle: &ExportBundle{
			ExportedAt: k.now(),
			Version:    EnvelopeVersion,
			Format:     ExportFormat,
			Record:     *res.Record,
		},
	}
}
