// Package auth validates portal access tokens and turns them into callers.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sddportal/backend/internal/domain/upload"
	"github.com/sddportal/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrInvalidRole      = errors.New("unknown role in claims")
	ErrMissingOwnership = errors.New("role requires agency_id or account_id")
)

// Claims are the portal access token claims
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	AgencyID  string `json:"agency_id,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// JWTService signs and validates HS256 access tokens
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	UserID    uuid.UUID
	Role      upload.Role
	AgencyID  *uuid.UUID
	AccountID *uuid.UUID
	TTL       time.Duration
}

// GenerateToken issues a signed access token. The portal identity service
// normally issues tokens; this is used by tooling and tests.
func (s *JWTService) GenerateToken(input GenerateTokenInput) (string, error) {
	now := s.now()
	ttl := input.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: input.UserID.String(),
		Role:   string(input.Role),
	}
	if input.AgencyID != nil {
		claims.AgencyID = input.AgencyID.String()
	}
	if input.AccountID != nil {
		claims.AccountID = input.AccountID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateAccessToken validates a token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// Caller converts the claims into the caller capability
func (c *Claims) Caller() (upload.Caller, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return upload.Caller{}, ErrInvalidClaims
	}
	role := upload.Role(c.Role)
	if !role.IsValid() {
		return upload.Caller{}, ErrInvalidRole
	}

	caller := upload.Caller{UserID: userID, Role: role}
	if caller.AgencyID, err = optionalUUID(c.AgencyID); err != nil {
		return upload.Caller{}, ErrInvalidClaims
	}
	if caller.AccountID, err = optionalUUID(c.AccountID); err != nil {
		return upload.Caller{}, ErrInvalidClaims
	}

	switch role {
	case upload.RoleAgencyAdmin:
		if caller.AgencyID == nil {
			return upload.Caller{}, ErrMissingOwnership
		}
	case upload.RoleAccountAdmin:
		if caller.AccountID == nil {
			return upload.Caller{}, ErrMissingOwnership
		}
	case upload.RoleViewer:
		if caller.AgencyID == nil && caller.AccountID == nil {
			return upload.Caller{}, ErrMissingOwnership
		}
	}
	return caller, nil
}

func optionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
