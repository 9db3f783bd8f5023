package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// AuthService issues and verifies HS256 access tokens.
type AuthService struct {
	Users    UserStore
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
}

type SignupInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"roles"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type accessClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Signup creates a Commuter or Operator account. Admin accounts are only
// created through EnsureAdmin.
func (s AuthService) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	role := domain.RoleCommuter
	if strings.TrimSpace(in.Role) != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok {
			return models.User{}, domain.ValidationError{Field: "roles", Msg: "unknown role"}
		}
		role = r
	}
	if role == domain.RoleAdmin {
		return models.User{}, domain.ForbiddenError{Msg: "Admin accounts cannot be self-registered"}
	}
	return s.createUser(ctx, in.Email, in.Password, role)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	_, err := s.Users.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	_, err = s.createUser(ctx, email, password, domain.RoleAdmin)
	return err
}

func (s AuthService) createUser(ctx context.Context, email, password string, role domain.Role) (models.User, error) {
	if len(password) < minPasswordLen {
		return models.User{}, domain.ValidationError{Field: "password", Msg: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	u := models.User{Email: normalizeEmail(email), PasswordHash: string(hash), Role: role}
	if err := s.Users.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "User already exists with this email.", Err: err}
		}
		return models.User{}, domain.InternalError{Msg: "failed to create user", Err: err}
	}
	utils.LogEventCtx(ctx, "auth", "signup", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return u, nil
}

// Login checks credentials and returns a signed token. Unknown email and wrong
// password produce the same error.
func (s AuthService) Login(ctx context.Context, in LoginInput) (string, models.User, error) {
	u, err := s.Users.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", models.User{}, domain.UnauthorizedError{Msg: "Invalid credentials"}
		}
		return "", models.User{}, domain.InternalError{Msg: "failed to load user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return "", models.User{}, domain.UnauthorizedError{Msg: "Invalid credentials"}
	}
	token, err := s.IssueToken(u)
	if err != nil {
		return "", models.User{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return token, u, nil
}

func (s AuthService) IssueToken(u models.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := nowOr(s.Now)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(s.Secret)
}

// ParseToken validates signature and expiry and returns the caller identity.
func (s AuthService) ParseToken(raw string) (domain.Actor, error) {
	var claims accessClaims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if s.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(s.Now))
	}
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return s.Secret, nil }, opts...)
	if err != nil {
		return domain.Actor{}, domain.UnauthorizedError{Msg: "Unauthorized. Invalid or expired token."}
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.UserID <= 0 {
		return domain.Actor{}, domain.UnauthorizedError{Msg: "Unauthorized. Invalid or expired token."}
	}
	return domain.Actor{UserID: claims.UserID, Role: role}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
