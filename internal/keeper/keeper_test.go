package keeper

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waxworks/vinylvault/internal/common"
	"github.com/waxworks/vinylvault/internal/events"
	"github.com/waxworks/vinylvault/internal/kvstore"
	"github.com/waxworks/vinylvault/internal/logging"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestKeeper(t *testing.T) (*Keeper, *kvstore.Memory, *fakeClock) {
	t.Helper()

	store := kvstore.NewMemory()
	clock := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	k := New(store, events.NewHub(), discardLogger(), WithClock(clock.now))
	return k, store, clock
}

func validRecord() *UserRecord {
	return &UserRecord{
		Sensitive: SensitiveData{
			FirstName:        "Anna",
			LastName:         "Müller",
			Email:            "anna@gmail.com",
			Phone:            "+49 30 1234567",
			ShippingAddress:  "Hauptstrasse 5, 10115 Berlin",
			IBAN:             "DE89370400440532013000",
			BIC:              "COBADEFFXXX",
			BankAccountOwner: "Anna Müller",
		},
		NonSensitive: NonSensitiveData{
			RegistrationDate: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			TermsAccepted:    true,
			PrivacyAccepted:  true,
			AccountStatus:    StatusPendingVerification,
		},
	}
}

func TestStoreRetrieve_RoundTrip(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)
	password := []byte("Password1!")

	res := k.StoreUserData(ctx, validRecord(), password)
	require.True(t, res.Success, "store failed: %v", res.Err)
	assert.NotEmpty(t, res.SessionID)

	got := k.RetrieveUserData(ctx, password)
	require.True(t, got.Success, "retrieve failed: %v", got.Err)
	assert.Equal(t, validRecord().Sensitive, got.Record.Sensitive)
	assert.Equal(t, validRecord().NonSensitive, got.Record.NonSensitive)
}

func TestStore_RejectsIncompleteRecord(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	rec := validRecord()
	rec.Sensitive.IBAN = ""

	res := k.StoreUserData(ctx, rec, []byte("pw"))
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrValidation)
}

func TestStore_RejectsBadIBANChecksum(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	rec := validRecord()
	rec.Sensitive.IBAN = "DE89370400440532013001"

	res := k.StoreUserData(ctx, rec, []byte("pw"))
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrValidation)
}

func TestStore_OptionalPhoneMayBeEmpty(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	rec := validRecord()
	rec.Sensitive.Phone = ""

	res := k.StoreUserData(ctx, rec, []byte("pw"))
	assert.True(t, res.Success, "store failed: %v", res.Err)
}

func TestStore_ReplacesPriorEnvelope(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.True(t, k.StoreUserData(ctx, validRecord(), []byte("first")).Success)

	rec := validRecord()
	rec.Sensitive.FirstName = "Berta"
	require.True(t, k.StoreUserData(ctx, rec, []byte("second")).Success)

	// Only the new password opens the single stored record.
	assert.False(t, k.RetrieveUserData(ctx, []byte("first")).Success)
	got := k.RetrieveUserData(ctx, []byte("second"))
	require.True(t, got.Success)
	assert.Equal(t, "Berta", got.Record.Sensitive.FirstName)
}

func TestRetrieve_NoData(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	res := k.RetrieveUserData(ctx, []byte("pw"))
	assert.False(t, res.Success)
	assert.True(t, res.NotFound, "absent record is a distinct not-found state")
	assert.ErrorIs(t, res.Err, common.ErrNotFound)
}

func TestRetrieve_WrongPassword(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.True(t, k.StoreUserData(ctx, validRecord(), []byte("right")).Success)

	res := k.RetrieveUserData(ctx, []byte("wrong"))
	require.False(t, res.Success)
	assert.False(t, res.NotFound)
	assert.ErrorIs(t, res.Err, common.ErrDecryption)
	assert.Nil(t, res.Record)
}

func TestRetrieve_TamperedCiphertextFailsIntegrity(t *testing.T) {
	ctx := context.Background()
	k, store, _ := newTestKeeper(t)
	password := []byte("Password1!")

	require.True(t, k.StoreUserData(ctx, validRecord(), password).Success)

	raw, err := store.Get(ctx, Prefix+"user_data")
	require.NoError(t, err)

	var env StorageEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))

	// Flip one character of the encrypted blob; the envelope hash covers it.
	b := []byte(env.EncryptedData)
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	env.EncryptedData = string(b)

	tampered, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, Prefix+"user_data", tampered))

	res := k.RetrieveUserData(ctx, password)
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrIntegrity, "integrity must fail before decryption is attempted")
}

func TestRetrieve_TamperedClearFieldFailsIntegrity(t *testing.T) {
	ctx := context.Background()
	k, store, _ := newTestKeeper(t)
	password := []byte("Password1!")

	require.True(t, k.StoreUserData(ctx, validRecord(), password).Success)

	raw, err := store.Get(ctx, Prefix+"user_data")
	require.NoError(t, err)

	var env StorageEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	env.NonSensitiveData.EmailVerified = true

	tampered, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, Prefix+"user_data", tampered))

	res := k.RetrieveUserData(ctx, password)
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrIntegrity)
}

func TestRetrieve_CorruptEnvelopeJSON(t *testing.T) {
	ctx := context.Background()
	k, store, _ := newTestKeeper(t)

	require.NoError(t, store.Set(ctx, Prefix+"user_data", []byte("not json")))

	res := k.RetrieveUserData(ctx, []byte("pw"))
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrIntegrity)
}

func TestUpdate_MergesPartialFields(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)
	password := []byte("Password1!")

	require.True(t, k.StoreUserData(ctx, validRecord(), password).Success)

	res := k.UpdateUserData(ctx, map[string]string{
		"shippingAddress": "Neue Strasse 7, 20095 Hamburg",
		"phone":           "",
	}, password)
	require.True(t, res.Success, "update failed: %v", res.Err)

	got := k.RetrieveUserData(ctx, password)
	require.True(t, got.Success)
	assert.Equal(t, "Neue Strasse 7, 20095 Hamburg", got.Record.Sensitive.ShippingAddress)
	assert.Equal(t, "", got.Record.Sensitive.Phone)
	assert.Equal(t, "Anna", got.Record.Sensitive.FirstName, "untouched fields survive the merge")
}

func TestUpdate_RequiresExistingPassword(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.True(t, k.StoreUserData(ctx, validRecord(), []byte("right")).Success)

	res := k.UpdateUserData(ctx, map[string]string{"firstName": "Berta"}, []byte("wrong"))
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrDecryption)
}

func TestDelete_Idempotent(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.True(t, k.StoreUserData(ctx, validRecord(), []byte("pw")).Success)

	first := k.DeleteUserData(ctx)
	assert.True(t, first.Success)

	second := k.DeleteUserData(ctx)
	assert.True(t, second.Success, "deleting an absent record is still a success")

	res := k.RetrieveUserData(ctx, []byte("pw"))
	assert.True(t, res.NotFound)
}

func TestMetadata_WithoutPassword(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.True(t, k.StoreUserData(ctx, validRecord(), []byte("pw")).Success)

	res := k.GetUserDataMetadata(ctx)
	require.True(t, res.Success, "metadata probe failed: %v", res.Err)

	assert.Equal(t, StatusPendingVerification, res.Metadata.NonSensitive.AccountStatus)
	assert.Equal(t, EnvelopeVersion, res.Metadata.Version)
	assert.Equal(t, "AES-256-GCM", res.Metadata.SecurityMetadata.Algorithm)
	assert.Equal(t, 100_000, res.Metadata.SecurityMetadata.Iterations)
}

func TestMetadata_NoData(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	res := k.GetUserDataMetadata(ctx)
	assert.False(t, res.Success)
	assert.True(t, res.NotFound)
}

func TestExport_WrapsDecryptedRecord(t *testing.T) {
	ctx := context.Background()
	k, _, clock := newTestKeeper(t)
	password := []byte("Password1!")

	require.True(t, k.StoreUserData(ctx, validRecord(), password).Success)

	res := k.ExportUserData(ctx, password)
	require.True(t, res.Success, "export failed: %v", res.Err)

	assert.Equal(t, ExportFormat, res.Bundle.Format)
	assert.Equal(t, clock.now(), res.Bundle.ExportedAt)
	assert.Equal(t, validRecord().Sensitive, res.Bundle.Record.Sensitive)
}

func TestExport_WrongPassword(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.True(t, k.StoreUserData(ctx, validRecord(), []byte("right")).Success)

	res := k.ExportUserData(ctx, []byte("wrong"))
	require.False(t, res.Success)
	assert.Nil(t, res.Bundle)
}

func TestInitialize_SweepsExpiredItems(t *testing.T) {
	ctx := context.Background()
	k, store, clock := newTestKeeper(t)

	old, err := json.Marshal(map[string]any{
		"storedAt": clock.now().Add(-31 * 24 * time.Hour),
		"payload":  "stale",
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, Prefix+"old_item", old))

	fresh, err := json.Marshal(map[string]any{
		"storedAt": clock.now().Add(-29 * 24 * time.Hour),
		"payload":  "recent",
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, Prefix+"fresh_item", fresh))

	unstamped := []byte(`{"payload":"no timestamps"}`)
	require.NoError(t, store.Set(ctx, Prefix+"unstamped", unstamped))

	require.True(t, k.Initialize(ctx))

	_, err = store.Get(ctx, Prefix+"old_item")
	assert.ErrorIs(t, err, common.ErrNotFound, "31-day-old item must be swept")

	_, err = store.Get(ctx, Prefix+"fresh_item")
	assert.NoError(t, err, "29-day-old item must be retained")

	_, err = store.Get(ctx, Prefix+"unstamped")
	assert.NoError(t, err, "items without timestamps are left alone")
}

func TestInitialize_IgnoresForeignKeys(t *testing.T) {
	ctx := context.Background()
	k, store, clock := newTestKeeper(t)

	foreign, err := json.Marshal(map[string]any{
		"storedAt": clock.now().Add(-60 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "other_app_data", foreign))

	require.True(t, k.Initialize(ctx))

	_, err = store.Get(ctx, "other_app_data")
	assert.NoError(t, err, "keys outside the namespace are not swept")
}

func TestInitialize_CreatesInactiveSession(t *testing.T) {
	ctx := context.Background()
	k, _, _ := newTestKeeper(t)

	require.True(t, k.Initialize(ctx))

	s, err := k.GetSession(ctx)
	require.NoError(t, err)
	assert.False(t, s.IsActive)
	assert.Len(t, s.SessionID, 64)
	assert.False(t, k.IsSessionValid(ctx))
}

type brokenStore struct {
	kvstore.Store
}

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	return assert.AnError
}

func TestInitialize_ReportsUnwritableStorage(t *testing.T) {
	ctx := context.Background()
	k := New(&brokenStore{kvstore.NewMemory()}, events.NewHub(), discardLogger())

	assert.False(t, k.Initialize(ctx))
}

func TestStore_ReportsStorageFailure(t *testing.T) {
	ctx := context.Background()
	k := New(&brokenStore{kvstore.NewMemory()}, events.NewHub(), discardLogger())

	res := k.StoreUserData(ctx, validRecord(), []byte("pw"))
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, common.ErrStorageUnavailable)
	assert.False(t, strings.Contains(res.Message, "assert.AnError"), "internal detail must not leak into the user message")
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	hub := events.NewHub()
	k := New(store, hub, discardLogger())

	ch, cancel := hub.Subscribe()
	defer cancel()

	require.True(t, k.StoreUserData(ctx, validRecord(), []byte("pw")).Success)

	seen := map[events.Kind]bool{}
	for len(ch) > 0 {
		seen[(<-ch).Kind] = true
	}
	assert.True(t, seen[events.KindStored])
}
