package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"storefront/internal/auth"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by SignIn for an unknown email or a
// wrong password. It wraps domain.ErrNotAuthenticated.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrNotAuthenticated)

type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResult is handed back on sign-in.
type AuthResult struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
}

type AuthUseCase interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	// SignOut ends every session of the session's user.
	SignOut(ctx context.Context, session *domain.Session) error
	// ResolveToken maps a bearer token to its live session.
	ResolveToken(ctx context.Context, token string) (*domain.Session, error)
	CurrentUser(ctx context.Context, session *domain.Session) (*domain.User, error)
}

type authUseCase struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	tokens      *auth.TokenManager
	sessionTTL  time.Duration
	hashCost    int
	log         *logrus.Logger
}

func NewAuthUseCase(users domain.UserRepository, sessions domain.SessionRepository, tokens *auth.TokenManager, sessionTTL time.Duration, logger *logrus.Logger) AuthUseCase {
	return &authUseCase{
		userRepo:    users,
		sessionRepo: sessions,
		tokens:      tokens,
		sessionTTL:  sessionTTL,
		hashCost:    bcrypt.DefaultCost,
		log:         logger,
	}
}

func (uc *authUseCase) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	if !isValidEmail(email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, fmt.Errorf("invalid email format: %w", domain.ErrValidation)
	}
	if err := validatePassword(in.Password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.hashCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	created, err := uc.userRepo.CreateUser(ctx, &domain.User{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hashed),
	})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}
	uc.log.Infof("Use Case: User registered successfully. ID: %s, Email: %s", created.ID, created.Email)
	return created, nil
}

func (uc *authUseCase) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	if !isValidEmail(email) || password == "" {
		uc.log.Warnf("Use Case: Auth failed - invalid email or empty password for %s", email)
		return nil, ErrInvalidCredentials
	}

	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %s)", email, user.ID)
			return nil, ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", email, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	// A fresh sign-in replaces whatever session the user had.
	if err := uc.sessionRepo.DeleteUserSessions(ctx, user.ID); err != nil {
		uc.log.Errorf("Use Case: Failed to clear previous sessions of user %s: %v", user.ID, err)
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.sessionTTL),
	}
	if err := uc.sessionRepo.CreateSession(ctx, session, uc.sessionTTL); err != nil {
		uc.log.Errorf("Use Case: Failed to store session for user %s: %v", user.ID, err)
		return nil, err
	}

	token, err := uc.tokens.Issue(session)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to sign token for user %s: %v", user.ID, err)
		_ = uc.sessionRepo.DeleteSession(ctx, session.ID)
		return nil, fmt.Errorf("could not issue token: %w", err)
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %s), session %s", email, user.ID, session.ID)
	return &AuthResult{Token: token, Session: session, User: user}, nil
}

func (uc *authUseCase) SignOut(ctx context.Context, session *domain.Session) error {
	if !session.Authenticated() {
		return fmt.Errorf("sign out: %w", domain.ErrNotAuthenticated)
	}
	if err := uc.sessionRepo.DeleteUserSessions(ctx, session.UserID); err != nil {
		uc.log.Errorf("Use Case: Failed to sign out user %s: %v", session.UserID, err)
		return err
	}
	uc.log.Infof("Use Case: User %s signed out", session.UserID)
	return nil
}

func (uc *authUseCase) ResolveToken(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.sessionRepo.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session %s ended: %w", claims.SessionID, domain.ErrNotAuthenticated)
		}
		return nil, err
	}
	if session.UserID != claims.Subject {
		uc.log.Warnf("Use Case: Token subject %s does not own session %s", claims.Subject, claims.SessionID)
		return nil, fmt.Errorf("session mismatch: %w", domain.ErrNotAuthenticated)
	}
	return session, nil
}

func (uc *authUseCase) CurrentUser(ctx context.Context, session *domain.Session) (*domain.User, error) {
	if !session.Authenticated() {
		return nil, fmt.Errorf("current user: %w", domain.ErrNotAuthenticated)
	}
	user, err := uc.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user profile for ID %s: %v", session.UserID, err)
		return nil, err
	}
	return user, nil
}

// isValidEmail provides a basic check for email format.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}

// validatePassword enforces basic password complexity rules.
func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	hasLetter := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter {
		return errors.New("password must contain at least one letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
