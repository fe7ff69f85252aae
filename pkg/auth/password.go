package auth

import (
	"errors"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher хэширует пароли через bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", e.Wrap("BcryptHasher.Hash", err)
	}

	return string(hash), nil
}

// Compare возвращает false без ошибки, если пароль не совпадает с хэшем.
func (h *BcryptHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, e.Wrap("BcryptHasher.Compare", err)
	}
}
