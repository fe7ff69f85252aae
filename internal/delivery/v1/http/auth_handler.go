package http

import (
	"net/http"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

// register
//
//	@Summary		Регистрация
//	@Description	Создаёт покупателя и возвращает его вместе с токеном
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Данные пользователя"
//	@Success		201		{object}	AuthResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации или email занят"
//	@Router			/auth/register [post]
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	res, err := h.authUsecase.Register(r.Context(), usecase.NewRegisterReq(req.Email, req.Password, req.Name))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, AuthResponse{User: toUserResponse(res.User), Token: res.Token})
}

// login
//
//	@Summary	Вход
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Email и пароль"
//	@Success	200		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse	"Неверные учётные данные"
//	@Router		/auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	res, err := h.authUsecase.Login(r.Context(), usecase.NewLoginReq(req.Email, req.Password))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, AuthResponse{User: toUserResponse(res.User), Token: res.Token})
}

// me
//
//	@Summary	Текущий пользователь
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	UserResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/auth/me [get]
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	user, err := h.authUsecase.Me(r.Context(), caller)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toUserResponse(user))
}
