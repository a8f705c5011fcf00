package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/curasys/fhir-gateway/lib/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrAlreadyExists = errors.New("email is already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password, so
	// authentication failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token is expired")
	ErrInvalidToken       = errors.New("token is invalid")
)

// Claims is the JWT payload for both access and refresh tokens. TokenType
// distinguishes the two so a refresh token cannot be replayed as an access
// token or vice versa.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Service manages accounts and issues signed tokens.
type Service struct {
	repo       Repository
	signingKey []byte
	issuer     string
	nowFunc    func() time.Time
}

func NewService(repo Repository, signingKey []byte, issuer string) *Service {
	return &Service{
		repo:       repo,
		signingKey: signingKey,
		issuer:     issuer,
		nowFunc:    time.Now,
	}
}

// Register creates an account with a bcrypt-hashed password. The plaintext
// password is never stored, and the returned User carries no hash either way
// since PasswordHash is excluded from encoding.
func (s *Service) Register(ctx context.Context, email, name, password string, role auth.Role) (*User, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.nowFunc(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("user_id", account.ID).Msg("Registered new user")
	return &account, nil
}

// Authenticate verifies the password and issues a fresh token pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(account)
}

// Refresh verifies the refresh token and issues a new token pair from the
// current user record, so role changes since the original login take effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}
	account, err := s.repo.FindByID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return s.issueTokens(account)
}

// Verify validates an access token and returns the claims it carries. It
// implements auth.TokenVerifier.
func (s *Service) Verify(token string) (auth.AccessClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return auth.AccessClaims{}, err
	}
	if claims.TokenType != "access" {
		return auth.AccessClaims{}, ErrInvalidToken
	}
	role, err := auth.ParseRole(claims.Role)
	if err != nil {
		return auth.AccessClaims{}, ErrInvalidToken
	}
	return auth.AccessClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    role,
	}, nil
}

func (s *Service) issueTokens(account *User) (*TokenPair, error) {
	access, err := s.sign(account, "access", accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(account, "refresh", refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(account *User, tokenType string, ttl time.Duration) (string, error) {
	now := s.nowFunc()
	claims := Claims{
		Email:     account.Email,
		Role:      string(account.Role),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func (s *Service) parse(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
