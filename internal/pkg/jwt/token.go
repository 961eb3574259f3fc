package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/piresc/tallytrack/internal/pkg/models"
)

var (
	// ErrInvalidToken covers bad signatures, wrong algorithms and malformed tokens
	ErrInvalidToken = errors.New("invalid status token")
	// ErrTrackingMismatch means the token was issued for another payment
	ErrTrackingMismatch = errors.New("status token does not match tracking id")
)

var now = time.Now

// IssueStatusToken signs a short-lived token that grants read access to one payment's status
func IssueStatusToken(trackingID string, cfg models.JWTConfig) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("jwt secret is not configured")
	}

	issuedAt := now()
	claims := models.StatusClaims{
		TrackingID: trackingID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   trackingID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Duration(cfg.Expiration) * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign status token: %w", err)
	}
	return signed, nil
}

// ParseStatusToken verifies an HS256 status token and returns its claims
func ParseStatusToken(tokenString, secret string) (*models.StatusClaims, error) {
	claims := &models.StatusClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.TrackingID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AuthorizeTracking parses the token and checks it was issued for trackingID
func AuthorizeTracking(tokenString, secret, trackingID string) error {
	claims, err := ParseStatusToken(tokenString, secret)
	if err != nil {
		return err
	}
	if claims.TrackingID != trackingID {
		return ErrTrackingMismatch
	}
	return nil
}
