package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"districtevents/internal/domain"
)

// ErrInvalidToken is returned by Verify for malformed, expired, or forged tokens.
var ErrInvalidToken = errors.New("invalid token")

type roleClaim struct {
	Role     string  `json:"role"`
	ChurchID *string `json:"church_id,omitempty"`
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Roles []roleClaim `json:"roles"`
}

type jwtIssuer struct {
	secret []byte
}

// NewJWTIssuer returns a TokenIssuer that signs JWTs with HS256 using the given secret.
func NewJWTIssuer(secret string) domain.TokenIssuer {
	return &jwtIssuer{secret: []byte(secret)}
}

func (i *jwtIssuer) Issue(userID, email string, grants []domain.RoleGrant, expiry time.Duration) (string, error) {
	now := time.Now()
	roles := make([]roleClaim, len(grants))
	for k, g := range grants {
		roles[k] = roleClaim{Role: string(g.Role), ChurchID: g.ChurchID}
	}
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a TokenVerifier for tokens signed by NewJWTIssuer with the same secret.
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenString string) (*domain.Principal, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	p := &domain.Principal{UserID: claims.Subject, Email: claims.Email}
	for _, r := range claims.Roles {
		role := domain.Role(r.Role)
		if !role.Valid() {
			continue
		}
		p.Grants = append(p.Grants, domain.RoleGrant{Role: role, ChurchID: r.ChurchID})
	}
	return p, nil
}
