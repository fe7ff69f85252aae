package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

// AuthUseCase регистрирует и аутентифицирует пользователей.
type AuthUseCase struct {
	userRepo UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   logger.Logger
}

func NewAuthUC(userRepo UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register создаёт покупателя и сразу выпускает для него токен.
func (a *AuthUseCase) Register(ctx context.Context, req *RegisterReq) (*AuthRes, error) {
	const op = "AuthUseCase.Register"

	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return nil, e.Wrap(op, e.NewValidationError("Email, password, and name are required"))
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// уникальность email гарантирует индекс, повтор вернёт e.ErrEmailTaken
	user, err := a.userRepo.Create(ctx, domain.NewUser(email, hash, name))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	token, err := a.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("user registered: id=%s", user.ID)

	return NewAuthRes(user, token), nil
}

// Login проверяет пароль. Неизвестный email и неверный пароль неразличимы для клиента.
func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*AuthRes, error) {
	const op = "AuthUseCase.Login"

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, e.Wrap(op, e.NewValidationError("Email and password are required"))
	}

	user, err := a.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	ok, err := a.hasher.Compare(user.PasswordHash, req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !ok {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	token, err := a.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewAuthRes(user, token), nil
}

// Me возвращает профиль вызывающего пользователя.
func (a *AuthUseCase) Me(ctx context.Context, caller Caller) (*domain.User, error) {
	user, err := a.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, e.Wrap("AuthUseCase.Me", err)
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
