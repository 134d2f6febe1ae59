// Package services holds the notevault business logic. Services validate
// input, open a unit of work on the store and return domain errors from
// internal/errors.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	domainerrors "github.com/rohits-web03/notevault/internal/errors"
	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/repositories"
	"github.com/rohits-web03/notevault/internal/utils"
	"github.com/rohits-web03/notevault/internal/validation"
)

const (
	loginFailedMessage = "Login failed. Check email and password."
	usernameTaken      = "That username is taken. Please choose a different one."
	emailTaken         = "That email is already registered."
	maxUsernameLength  = 20
)

// Claims is the payload of the session token. RegisteredClaims.ID carries
// the session id.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is a signed token and when it stops being accepted.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uuid.UUID
	Username  string
	Email     string
	SessionID string
}

type RegisterInput struct {
	Username        string `form:"username" validate:"required,min=2,max=20"`
	Email           string `form:"email" validate:"required,email,max=120"`
	Password        string `form:"password" validate:"required,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type ProfileInput struct {
	Username string `form:"username" validate:"required,min=2,max=20"`
	Email    string `form:"email" validate:"required,email,max=120"`
}

type ChangePasswordInput struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,maxbytes=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// AuthService registers users, checks credentials and manages sessions.
type AuthService struct {
	store      *repositories.Store
	sessions   repositories.SessionStore
	validator  *validation.Validator
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
	log        *zap.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(
	store *repositories.Store,
	sessions repositories.SessionStore,
	v *validation.Validator,
	secret string,
	ttl time.Duration,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		store:      store,
		sessions:   sessions,
		validator:  v,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		log:        log,
	}
}

// TTL is how long a new session lives.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Register creates an account. The password is stored as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: in.Username, Email: in.Email, Password: hash}

	err = s.store.Transaction(ctx, func(r repositories.Repos) error {
		if err := checkUnique(r.Users, in.Username, in.Email, uuid.Nil); err != nil {
			return err
		}
		return r.Users.Create(user)
	})
	if err != nil {
		return nil, uniqueViolation(err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func checkUnique(users *repositories.Users, username, email string, except uuid.UUID) error {
	taken, err := users.UsernameTaken(username, except)
	if err != nil {
		return err
	}
	if taken {
		return domainerrors.Conflict(usernameTaken)
	}
	taken, err = users.EmailTaken(email, except)
	if err != nil {
		return err
	}
	if taken {
		return domainerrors.Conflict(emailTaken)
	}
	return nil
}

// uniqueViolation turns an insert that lost a race on a unique index into
// the same conflict a pre-check would have reported.
func uniqueViolation(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.Wrap(err, domainerrors.CodeConflict, "That username or email is already registered.")
	}
	return err
}

// Login checks the credentials and starts a session. Unknown emails and
// wrong passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return Session{}, err
	}

	user, err := s.store.Read(ctx).Users.ByEmail(in.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Spend the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(in.Password))
		return Session{}, domainerrors.InvalidCredentials(loginFailedMessage)
	}
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return Session{}, domainerrors.InvalidCredentials(loginFailedMessage)
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("notevault"), s.bcryptCost)
	})
	return s.dummyHash
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (Session, error) {
	sid := uuid.NewString()
	now := s.now()
	expiresAt := now.Add(s.ttl)

	if err := s.sessions.Create(ctx, sid, user.ID, s.ttl); err != nil {
		return Session{}, err
	}

	claims := &Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrSignatureInvalid
	}
	return s.secret, nil
}

// Authenticate resolves a session token to its user. Any problem with the
// token or the session is reported as CodeUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing session token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, domainerrors.Unauthorized("invalid session token")
	}
	claimedID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid session token")
	}

	userID, err := s.sessions.Lookup(ctx, claims.ID)
	if errors.Is(err, repositories.ErrSessionNotFound) || (err == nil && userID != claimedID) {
		return nil, domainerrors.Unauthorized("session expired")
	}
	if err != nil {
		return nil, err
	}

	user, err := s.store.Read(ctx).Users.ByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = s.sessions.Delete(ctx, claims.ID)
		return nil, domainerrors.Unauthorized("session expired")
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}

	return &Principal{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		SessionID: claims.ID,
	}, nil
}

// Logout ends the session named by token. Missing, malformed and expired
// tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.ID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// User returns the account of an authenticated caller.
func (s *AuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Read(ctx).Users.ByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.NotFound("User not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	hash, err := s.hash(in.NewPassword)
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(r repositories.Repos) error {
		user, err := r.Users.ByID(userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.NotFound("User not found.")
		}
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
			return domainerrors.InvalidCredentials("Current password is incorrect.")
		}
		return r.Users.UpdatePassword(userID, hash)
	})
}

// UpdateProfile changes username and email under the registration rules.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		user, err = r.Users.ByID(userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.NotFound("User not found.")
		}
		if err != nil {
			return err
		}
		if err := checkUnique(r.Users, in.Username, in.Email, userID); err != nil {
			return err
		}
		user.Username = in.Username
		user.Email = in.Email
		return r.Users.UpdateProfile(user)
	})
	if err != nil {
		return nil, uniqueViolation(err)
	}
	return user, nil
}

// DeleteAccount removes the user with their notes, then revokes every
// session they hold.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		return r.Users.Delete(userID)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.NotFound("User not found.")
	}
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteUser(ctx, userID); err != nil {
		s.log.Warn("failed to revoke sessions of deleted user",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.log.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

// SignInWithEmail starts a session for an externally verified email,
// creating the account on first use.
func (s *AuthService) SignInWithEmail(ctx context.Context, email, displayName string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Session{}, domainerrors.FieldValidation("email", "This field is required.")
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(r repositories.Repos) error {
		var err error
		user, err = r.Users.ByEmail(email)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		username, err := availableUsername(r.Users, usernameBase(displayName, email))
		if err != nil {
			return err
		}
		secret, err := utils.GenerateSecureToken(32)
		if err != nil {
			return err
		}
		// Nobody knows this password; the account signs in through Google
		// until the user sets one from the profile page.
		hash, err := s.hash(secret)
		if err != nil {
			return err
		}
		user = &models.User{Username: username, Email: email, Password: hash}
		return r.Users.Create(user)
	})
	if err != nil {
		return Session{}, uniqueViolation(err)
	}
	return s.startSession(ctx, user)
}

// usernameBase keeps letters, digits, '.', '-' and '_' from the display
// name, falling back to the email local part.
func usernameBase(displayName, email string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
				return r
			default:
				return -1
			}
		}, s)
	}

	base := clean(displayName)
	if utf8.RuneCountInString(base) < 2 {
		local, _, _ := strings.Cut(email, "@")
		base = clean(local)
	}
	if utf8.RuneCountInString(base) < 2 {
		base = "user"
	}
	return truncateRunes(base, maxUsernameLength)
}

func availableUsername(users *repositories.Users, base string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		taken, err := users.UsernameTaken(candidate, uuid.Nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := strconv.Itoa(n)
		candidate = truncateRunes(base, maxUsernameLength-len(suffix)) + suffix
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
