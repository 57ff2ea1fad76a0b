package auth

import (
	"net/http"
	"time"

	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// StatusInvalidToken is the non-standard status used when a bearer token fails
// verification, distinct from 401 which signals a missing or malformed header.
const StatusInvalidToken = 498

// TokenService signs and verifies the HS256 bearer tokens carrying caller identity
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given signing secret
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// CreateToken issues a signed token for the given identity claims
func (s *TokenService) CreateToken(claims *models.JwtCustomClaims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken checks signature and expiry and returns the identity claims.
// Any failure is reported as a 498 Invalid Token error.
func (s *TokenService) VerifyToken(tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, httperror.New(http.StatusUnauthorized, "Not authorized", "Unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, httperror.New(StatusInvalidToken, "Invalid Token", err.Error())
	}
	if !token.Valid {
		return nil, httperror.New(StatusInvalidToken, "Invalid Token", "Invalid token")
	}
	return claims, nil
}

// HashPasswd hashes a plaintext password with bcrypt
func HashPasswd(passwd string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePasswd reports whether the plaintext password matches the stored hash
func ComparePasswd(passwd, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passwd)) == nil
}
