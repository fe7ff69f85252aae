package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims полезная нагрузка access-токена.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity описывает вызывающего пользователя, извлечённого из токена.
type Identity struct {
	ID   uuid.UUID
	Role string
}

// TokenManager выпускает и проверяет HS256 JWT.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate выпускает токен для пользователя.
func (m *TokenManager) Generate(userID uuid.UUID, role string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", e.Wrap("TokenManager.Generate", err)
	}

	return signed, nil
}

// Parse проверяет подпись, алгоритм и срок действия токена.
func (m *TokenManager) Parse(tokenStr string) (*Identity, error) {
	const op = "TokenManager.Parse"

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, e.Wrap(op, errors.Join(e.ErrInvalidToken, err))
	}
	if !token.Valid {
		return nil, e.Wrap(op, e.ErrInvalidToken)
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, e.Wrap(op, errors.Join(e.ErrInvalidToken, err))
	}

	return &Identity{ID: id, Role: claims.Role}, nil
}
