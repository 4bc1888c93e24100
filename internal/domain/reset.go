package domain

// PendingVerification is an active OTP challenge for one identity.
// PK: identity. At most one challenge exists per identity; writing a new one
// replaces the old. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type PendingVerification struct {
	Identity  string `json:"identity" dynamodbav:"identity"`
	Code      string `json:"code" dynamodbav:"code"` // 6 digits, leading zeros preserved
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	Attempts  int    `json:"attempts" dynamodbav:"attempts"`
}

// ResetToken is the single-use secret issued after a successful code
// verification. It lives in its own table so a token and a fresh challenge
// for the same identity can never collide.
type ResetToken struct {
	Identity  string `json:"identity" dynamodbav:"identity"`
	Token     string `json:"token" dynamodbav:"token"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}

// User is the credential-store record. Only the fields the reset flow
// touches are modelled here.
type User struct {
	Email        string `json:"email" dynamodbav:"email"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	UpdatedAt    int64  `json:"updated_at" dynamodbav:"updated_at"`
}
