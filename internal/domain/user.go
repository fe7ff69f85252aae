package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role роль пользователя
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User описывает зарегистрированного пользователя
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
}

func NewUser(email, passwordHash, name string) *User {
	return &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleCustomer,
	}
}
