package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"scholar-backend/domain/permissions"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
)

// Claims represents the JWT claims issued by the identity provider. Customer
// affiliation and access rights travel as custom claims.
type Claims struct {
	Username     string `json:"custom:username"`
	CustomerID   string `json:"custom:customerId"`
	AccessRights string `json:"custom:accessRights"`
	Scope        string `json:"scope,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// ToActor converts validated claims into the domain actor. Tokens issued
// through the client-credentials grant carry a client_id and no username.
func (c *Claims) ToActor() permissions.Actor {
	username := c.Username
	if username == "" {
		username = c.Subject
	}

	var rights []permissions.AccessRight
	for _, token := range strings.Split(c.AccessRights, ",") {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			rights = append(rights, permissions.AccessRight(trimmed))
		}
	}

	return permissions.Actor{
		Username:         username,
		OrganizationID:   c.CustomerID,
		AccessRights:     rights,
		IsExternalClient: c.ClientID != "" && c.Username == "",
	}
}

// JWTConfig configures token validation
type JWTConfig struct {
	SigningMethod string
	SecretKey     string
	PublicKey     string
	Issuer        string
	Audience      []string
}

// JWTValidator handles JWT validation
type JWTValidator struct {
	publicKey     *rsa.PublicKey
	secretKey     []byte
	signingMethod jwt.SigningMethod
	issuer        string
	audience      []string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	validator := &JWTValidator{
		issuer:   config.Issuer,
		audience: config.Audience,
	}

	switch config.SigningMethod {
	case "RS256":
		validator.signingMethod = jwt.SigningMethodRS256
		if config.PublicKey == "" {
			return nil, errors.New("public key required for RS256")
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(config.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		validator.publicKey = key
	case "HS256":
		validator.signingMethod = jwt.SigningMethodHS256
		if config.SecretKey == "" {
			return nil, errors.New("secret key required for HS256")
		}
		validator.secretKey = []byte(config.SecretKey)
	default:
		return nil, fmt.Errorf("unsupported signing method: %s", config.SigningMethod)
	}

	return validator, nil
}

// ValidateToken validates a JWT token and returns the claims
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != v.signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		switch v.signingMethod {
		case jwt.SigningMethodRS256:
			return v.publicKey, nil
		default:
			return v.secretKey, nil
		}
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}

	return claims, nil
}
