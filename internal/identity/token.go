package identity

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"doctransfer/internal/model"
)

var (
	ErrMissingToken = errors.New("authorization token required")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the identity-provider claims the service reads.
type Claims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nickname   string `json:"nickname"`
	jwt.RegisteredClaims
}

// TokenResolver verifies bearer tokens issued by the identity provider and maps them to users.
type TokenResolver struct {
	secret []byte
}

func NewTokenResolver(secret string) *TokenResolver {
	return &TokenResolver{secret: []byte(secret)}
}

// Resolve validates the token signature and expiry and returns the caller identity.
// The nickname claim carries the role marker.
func (r *TokenResolver) Resolve(tokenString string) (*model.User, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" {
		return nil, errors.Join(ErrInvalidToken, errors.New("email claim missing"))
	}

	return &model.User{
		Email:     claims.Email,
		Name:      claims.GivenName,
		Surname:   claims.FamilyName,
		Role:      claims.Nickname,
		SubjectID: claims.Subject,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
// A bare token without the scheme is accepted as well.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
