package http

import (
	"net/http"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

// getCart
//
//	@Summary	Корзина текущего пользователя
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	CartResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/cart [get]
func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	cart, err := h.cartUsecase.GetCart(r.Context(), caller)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(cart))
}

// addItem
//
//	@Summary		Добавление товара в корзину
//	@Description	Если товар уже в корзине, количество увеличивается
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		AddCartItemRequest	true	"Товар и количество (по умолчанию 1)"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse	"Недостаточно товара"
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart [post]
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	var req AddCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	// пустой product_id превращается в uuid.Nil и отклоняется в usecase
	var productID uuid.UUID
	if req.ProductID != "" {
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			respondError(h.logger, w, e.NewValidationError("product_id must be a valid id"))
			return
		}
		productID = id
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.cartUsecase.AddItem(r.Context(), caller, usecase.NewAddCartItemReq(productID, quantity))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(cart))
}

// updateItem
//
//	@Summary		Изменение количества
//	@Description	Количество 0 удаляет строку
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"ID строки корзины"
//	@Param			request	body		UpdateCartItemRequest	true	"Новое количество"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart/{id} [put]
func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	id, err := parseIDParam(r, e.ErrCartItemNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	var req UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	if req.Quantity == nil {
		respondError(h.logger, w, e.ErrInvalidQuantity)
		return
	}

	cart, err := h.cartUsecase.UpdateItem(r.Context(), caller, usecase.NewUpdateCartItemReq(id, *req.Quantity))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(cart))
}

// removeItem
//
//	@Summary	Удаление строки корзины
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"ID строки корзины"
//	@Success	200	{object}	CartResponse
//	@Router		/cart/{id} [delete]
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	id, err := parseIDParam(r, e.ErrCartItemNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	cart, err := h.cartUsecase.RemoveItem(r.Context(), caller, id)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(cart))
}

// clearCart
//
//	@Summary	Очистка корзины
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	CartResponse
//	@Router		/cart [delete]
func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	cart, err := h.cartUsecase.Clear(r.Context(), caller)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(cart))
}
