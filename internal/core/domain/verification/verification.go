package verification

import "time"

// Token is the raw single-use secret mailed to the account owner.
type Token string

func (t Token) String() string {
	return string(t)
}

// Key is the one-way lookup key a Token is stored under.
type Key string

func (k Key) String() string {
	return string(k)
}

// PendingVerification is the record held in the verification store until the
// token is consumed or expires.
type PendingVerification struct {
	AccountName string    `json:"name"`
	Email       string    `json:"email"`
	IssuedAt    time.Time `json:"issued_at"`
}

// DefaultTTL is how long a confirmation link stays usable.
const DefaultTTL = 7 * 24 * time.Hour
