package auth

import (
	"context"
	"fmt"
	"log"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/user"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// supabaseClaims is the subset of a Supabase access token we read. The role
// claim is the Postgres role ("authenticated"), not the marketplace role.
type supabaseClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// tokenAudience is the aud claim Supabase puts on signed-in user tokens.
const tokenAudience = "authenticated"

type service struct {
	userRepo user.Repository
	secret   []byte
}

// NewService creates a token resolver verifying HS256 tokens signed with the
// Supabase project JWT secret.
func NewService(userRepo user.Repository, secret []byte) Service {
	return &service{userRepo: userRepo, secret: secret}
}

func (s *service) Resolve(ctx context.Context, raw string) (*Caller, error) {
	if raw == "" {
		return nil, apperr.Unauthorized("authentication required")
	}

	claims := &supabaseClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		log.Printf("auth: rejected token: %v", err)
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	if claims.ExpiresAt == 0 || !claims.VerifyAudience(tokenAudience, true) {
		log.Printf("auth: rejected token: missing expiry or audience %q", claims.Audience)
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}

	// The role comes from our own users table, never from the token.
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("unknown user")
		}
		return nil, err
	}
	return &Caller{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}
