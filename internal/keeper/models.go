package keeper

import "time"

// AccountStatus is the lifecycle state of the stored account.
type AccountStatus string

const (
	StatusPendingVerification AccountStatus = "pending_verification"
	StatusActive              AccountStatus = "active"
	StatusSuspended           AccountStatus = "suspended"
)

// SensitiveData holds the fields that are only ever persisted encrypted,
// as one unit. Phone is the single optional field.
type SensitiveData struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	ShippingAddress  string `json:"shippingAddress"`
	IBAN             string `json:"iban"`
	BIC              string `json:"bic"`
	BankAccountOwner string `json:"bankAccountOwner"`
}

// NonSensitiveData is stored in the clear alongside the encrypted payload.
type NonSensitiveData struct {
	RegistrationDate time.Time     `json:"registrationDate"`
	TermsAccepted    bool          `json:"termsAccepted"`
	PrivacyAccepted  bool          `json:"privacyAccepted"`
	EmailVerified    bool          `json:"emailVerified"`
	AccountStatus    AccountStatus `json:"accountStatus"`
}

// UserRecord is the logical user entity. It exists only transiently in
// memory: on store it is split into encrypted and clear parts, and it is
// reassembled only after a successful retrieve+decrypt.
type UserRecord struct {
	Sensitive    SensitiveData
	NonSensitive NonSensitiveData
}

// SecurityMetadata describes how the envelope's payload was encrypted. It is
// informational: decryption parameters are self-contained in EncryptedData.
type SecurityMetadata struct {
	Algorithm   string    `json:"algorithm"`
	KDF         string    `json:"kdf"`
	Iterations  int       `json:"iterations"`
	SaltLength  int       `json:"saltLength"`
	IVLength    int       `json:"ivLength"`
	TagLength   int       `json:"tagLength"`
	EncryptedAt time.Time `json:"encryptedAt"`
}

// StorageEnvelope is the persisted unit. DataHash covers the JSON
// serialization of the envelope with DataHash itself empty; see verifyHash.
type StorageEnvelope struct {
	EncryptedData    string           `json:"encryptedData"`
	NonSensitiveData NonSensitiveData `json:"nonSensitiveData"`
	HashedPassword   string           `json:"hashedPassword"`
	SecurityMetadata SecurityMetadata `json:"securityMetadata"`
	StoredAt         time.Time        `json:"storedAt"`
	Version          string           `json:"version"`
	DataHash         string           `json:"dataHash,omitempty"`
}

// Session is the persisted session state. A session is valid only while
// IsActive is true and LastActivity is fresher than the session TTL.
type Session struct {
	SessionID    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	IsActive     bool      `json:"isActive"`
}

// Metadata is the decryption-free view of the stored envelope, used to probe
// whether an account exists and what state it is in without the password.
type Metadata struct {
	NonSensitive     NonSensitiveData `json:"nonSensitiveData"`
	SecurityMetadata SecurityMetadata `json:"securityMetadata"`
	StoredAt         time.Time        `json:"storedAt"`
	Version          string           `json:"version"`
}

// ExportBundle wraps a decrypted record for a data-portability request.
type ExportBundle struct {
	ExportedAt time.Time  `json:"exportedAt"`
	Version    string     `json:"version"`
	Format     string     `json:"format"`
	Record     UserRecord `json:"record"`
}

// StoreResult reports the outcome of a store or update operation. Message is
// safe to show to the user; Err carries the sentinel for errors.Is matching
// and is meant for logs, never for display.
type StoreResult struct {
	Success   bool
	SessionID string
	Message   string
	Err       error
}

// RetrieveResult reports the outcome of a retrieve. NotFound distinguishes
// the valid "no account yet" state from actual failures.
type RetrieveResult struct {
	Success  bool
	NotFound bool
	Record   *UserRecord
	Message  string
	Err      error
}

// DeleteResult reports the outcome of a delete. Deleting an absent record is
// a success.
type DeleteResult struct {
	Success bool
	Message string
	Err     error
}

// MetadataResult reports the outcome of a metadata probe.
type MetadataResult struct {
	Success  bool
	NotFound bool
	Metadata *Metadata
	Message  string
	Err      error
}

// ExportResult reports the outcome of a data export.
type ExportResult struct {
	Success  bool
	NotFound bool
	Bundle   *ExportBundle
	Message  string
	Err      error
}
