package registration

import "time"

// Candidate is a signup request before any validation or persistence.
type Candidate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PendingRegistration is a staged signup awaiting confirmation of its token.
type PendingRegistration struct {
	Username     string
	PasswordHash []byte
	Email        string
	Token        string
	CreatedAt    time.Time
}

// Account is a confirmed, permanent identity.
type Account struct {
	ID           string
	Username     string
	PasswordHash []byte
	Email        string
	CreatedAt    time.Time
}
