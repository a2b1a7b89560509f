package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trailmate/internal/lib/hasher"
	"trailmate/internal/lib/id"
	"trailmate/internal/lib/jwt"
	sl "trailmate/internal/lib/logger"
	"trailmate/internal/lib/random"
	"trailmate/internal/models"
	"trailmate/internal/storage"
)

var (
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredToken        = errors.New("token expired")
	ErrEmailNotVerified    = errors.New("email not verified")
)

type UserSaver interface {
	SaveUser(ctx context.Context, u models.User) error
	SetEmailVerified(ctx context.Context, userID string) error
}

type UserProvider interface {
	UserByID(ctx context.Context, userID string) (models.User, error)
	UserByLogin(ctx context.Context, login string) (models.User, error)
	UserByVerificationToken(ctx context.Context, token string) (models.User, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, s models.Session) error
	SessionByID(ctx context.Context, sessionID string) (models.Session, error)
	RotateSession(ctx context.Context, familyID, presentedID string, next models.Session) error
}

type EventQueue interface {
	EnqueueEvent(ctx context.Context, payload any) error
}

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	sessions    SessionStore
	events      EventQueue
	passwords   *hasher.Hasher
	refresh     *hasher.Hasher
	codec       *jwt.Codec
	refreshTTL  time.Duration
	baseURL     string
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	sessions SessionStore,
	events EventQueue,
	passwords, refresh *hasher.Hasher,
	codec *jwt.Codec,
	refreshTTL time.Duration,
	baseURL string,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		sessions:    sessions,
		events:      events,
		passwords:   passwords,
		refresh:     refresh,
		codec:       codec,
		refreshTTL:  refreshTTL,
		baseURL:     baseURL,
	}
}

// Register creates a user with an unverified email and queues the
// verification mail. Email and username collisions both map to ErrUserExists.
func (a *Auth) Register(
	ctx context.Context,
	givenName, familyName, email, username, password string,
) (models.User, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := a.passwords.Hash(password)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	verificationToken, err := random.Hex(random.VerificationTokenBytes)
	if err != nil {
		log.Error("failed to generate verification token", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:                     id.NewUserID(),
		GivenName:              givenName,
		FamilyName:             familyName,
		Email:                  email,
		Username:               username,
		PassHash:               passHash,
		EmailVerificationToken: verificationToken,
		CreatedAt:              time.Now().UTC(),
	}

	if err := a.usrSaver.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return models.User{}, ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	msg := models.EmailMessage{
		Email:   user.Email,
		Link:    fmt.Sprintf("%s/auth/verify-email/%s", a.baseURL, verificationToken),
		Purpose: "email_verification",
	}

	// Best effort: a lost mail is recoverable, a lost registration is not.
	if err := a.events.EnqueueEvent(ctx, msg); err != nil {
		log.Warn("failed to enqueue verification email", sl.Err(err))
	}

	log.Info("user registered", slog.String("uid", user.ID))

	return user, nil
}

// VerifyEmail redeems a verification token. Unknown tokens report false with
// no hint why; a token that is still stored re-succeeds, so repeat visits of
// the same link are idempotent.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (bool, error) {
	const op = "auth.VerifyEmail"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("unknown verification token")
			return false, nil
		}

		log.Error("failed to look up verification token", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.SetEmailVerified(ctx, user.ID); err != nil {
		log.Error("failed to mark email verified", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email verified", slog.String("uid", user.ID))

	return true, nil
}

// Login checks credentials and opens a new session family. The login value
// matches either email or username. When no account matches, a dummy bcrypt
// comparison still runs so the response latency does not reveal whether the
// account exists.
func (a *Auth) Login(
	ctx context.Context,
	login, password, callerIP, callerUserAgent string,
) (models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			a.passwords.VerifyDummy(password)
			log.Warn("login for unknown account")
			return models.TokenPair{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if !a.passwords.Verify(password, user.PassHash) {
		log.Warn("wrong password", slog.String("uid", user.ID))
		return models.TokenPair{}, ErrInvalidCredentials
	}

	sess, pair, err := a.mintSession(user, id.NewFamilyID(), callerIP, callerUserAgent)
	if err != nil {
		log.Error("failed to mint session", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.sessions.SaveSession(ctx, sess); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.String("uid", user.ID), slog.String("family", sess.FamilyID))

	return pair, nil
}

// Me resolves the bearer token to the current user record. The user is
// loaded fresh by subject id rather than rebuilt from claims, so profile
// changes show up even though the token itself is stale data. Unknown
// subjects fail exactly like bad signatures.
func (a *Auth) Me(ctx context.Context, authorizationHeader string) (models.User, error) {
	const op = "auth.Me"

	log := a.log.With(slog.String("op", op))

	token := strings.TrimPrefix(authorizationHeader, "Bearer ")

	claims, err := a.codec.Verify(token)
	if err != nil {
		log.Warn("access token rejected", sl.Err(err))

		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.User{}, ErrExpiredToken
		}

		return models.User{}, ErrInvalidAccessToken
	}

	user, err := a.usrProvider.UserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("access token for unknown subject")
			return models.User{}, ErrInvalidAccessToken
		}

		log.Error("failed to load user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if user.EmailVerifiedAt == nil {
		return models.User{}, ErrEmailNotVerified
	}

	return user, nil
}

// Exchange swaps a refresh token for a fresh access/refresh pair within the
// same family. Only the newest session in a family is exchangeable; a replay
// of any older token is treated as theft and locks out the whole family,
// the legitimate holder included.
func (a *Auth) Exchange(
	ctx context.Context,
	refreshToken, refreshTokenID, callerIP, callerUserAgent string,
) (models.TokenPair, error) {
	const op = "auth.Exchange"

	log := a.log.With(slog.String("op", op))

	sess, err := a.sessions.SessionByID(ctx, refreshTokenID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Warn("unknown refresh token id")
			return models.TokenPair{}, ErrInvalidRefreshToken
		}

		log.Error("failed to load session", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if !a.refresh.Verify(refreshToken, sess.RefreshTokenHash) {
		log.Warn("refresh token hash mismatch", slog.String("sid", sess.ID))
		return models.TokenPair{}, ErrInvalidRefreshToken
	}

	if sess.InvalidatedAt != nil {
		log.Warn("refresh token from invalidated family", slog.String("family", sess.FamilyID))
		return models.TokenPair{}, ErrInvalidRefreshToken
	}

	if time.Now().After(sess.ExpiresAt) {
		log.Warn("refresh token expired", slog.String("sid", sess.ID))
		return models.TokenPair{}, ErrExpiredToken
	}

	user, err := a.usrProvider.UserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.TokenPair{}, ErrInvalidRefreshToken
		}

		log.Error("failed to load user", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if user.EmailVerifiedAt == nil {
		return models.TokenPair{}, ErrEmailNotVerified
	}

	next, pair, err := a.mintSession(user, sess.FamilyID, callerIP, callerUserAgent)
	if err != nil {
		log.Error("failed to mint session", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	err = a.sessions.RotateSession(ctx, sess.FamilyID, sess.ID, next)
	if err != nil {
		if errors.Is(err, storage.ErrSessionSuperseded) {
			log.Warn("refresh token reuse detected, family invalidated",
				slog.String("family", sess.FamilyID),
				slog.String("uid", user.ID),
			)
			return models.TokenPair{}, ErrInvalidRefreshToken
		}
		if errors.Is(err, storage.ErrSessionNotFound) {
			return models.TokenPair{}, ErrInvalidRefreshToken
		}

		log.Error("failed to rotate session", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("tokens refreshed", slog.String("uid", user.ID), slog.String("family", sess.FamilyID))

	return pair, nil
}

// mintSession builds one access/refresh issuance. The raw refresh token
// leaves this function exactly once, inside the returned pair; only its
// bcrypt hash is ever persisted.
func (a *Auth) mintSession(
	user models.User,
	familyID, callerIP, callerUserAgent string,
) (models.Session, models.TokenPair, error) {
	accessToken, err := a.codec.Sign(user.ID, user.Email)
	if err != nil {
		return models.Session{}, models.TokenPair{}, err
	}

	rawRefresh, err := random.Hex(random.RefreshTokenBytes)
	if err != nil {
		return models.Session{}, models.TokenPair{}, err
	}

	refreshHash, err := a.refresh.Hash(rawRefresh)
	if err != nil {
		return models.Session{}, models.TokenPair{}, err
	}

	now := time.Now().UTC()

	sess := models.Session{
		ID:               id.NewSessionID(),
		UserID:           user.ID,
		RefreshTokenHash: refreshHash,
		ExpiresAt:        now.Add(a.refreshTTL),
		FamilyID:         familyID,
		CallerIP:         callerIP,
		CallerUserAgent:  callerUserAgent,
		CreatedAt:        now,
	}

	pair := models.TokenPair{
		AccessToken:    accessToken,
		RefreshToken:   rawRefresh,
		RefreshTokenID: sess.ID,
	}

	return sess, pair, nil
}
