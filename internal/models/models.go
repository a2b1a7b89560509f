package models

import "time"

type User struct {
	ID                     string
	GivenName              string
	FamilyName             string
	Email                  string
	Username               string
	PassHash               string
	EmailVerificationToken string
	EmailVerifiedAt        *time.Time
	CreatedAt              time.Time
}

// PublicUser is the projection returned over the API. It never carries the
// password hash or the verification token.
type PublicUser struct {
	ID              string  `json:"id"`
	GivenName       string  `json:"givenName"`
	FamilyName      string  `json:"familyName"`
	Email           string  `json:"email"`
	Username        string  `json:"username"`
	EmailVerifiedAt *string `json:"emailVerifiedAt"`
}

func (u User) Public() PublicUser {
	var verifiedAt *string
	if u.EmailVerifiedAt != nil {
		s := u.EmailVerifiedAt.UTC().Format(time.RFC3339)
		verifiedAt = &s
	}

	return PublicUser{
		ID:              u.ID,
		GivenName:       u.GivenName,
		FamilyName:      u.FamilyName,
		Email:           u.Email,
		Username:        u.Username,
		EmailVerifiedAt: verifiedAt,
	}
}

// Session is one issued refresh token. Sessions sharing a family id descend
// from the same login; only the most recently created row in a family is
// exchangeable.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	FamilyID         string
	CallerIP         string
	CallerUserAgent  string
	InvalidatedAt    *time.Time
	CreatedAt        time.Time
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken    string `json:"accessToken"`
	RefreshToken   string `json:"refreshToken"`
	RefreshTokenID string `json:"refreshTokenId"`
}

type Track struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type QueueEvent struct {
	ID       int64
	Status   string
	TryCount int
	MaxTries int
	Payload  []byte
}

// EmailMessage is the payload handed to the mail sender through the queue.
type EmailMessage struct {
	Email   string `json:"to"`
	Link    string `json:"link"`
	Purpose string `json:"purpose"`
}
