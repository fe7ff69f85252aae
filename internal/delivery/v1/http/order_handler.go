package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, logger: logger}
}

// listOrders
//
//	@Summary		Заказы
//	@Description	Администратор видит все заказы, покупатель только свои. Новые первыми
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		OrderResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/orders [get]
func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	orders, err := h.orderUsecase.ListOrders(r.Context(), caller)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrOrderResponse(orders))
}

// getOrder
//
//	@Summary	Заказ по id
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"ID заказа"
//	@Success	200	{object}	OrderResponse
//	@Failure	403	{object}	ErrorResponse	"Чужой заказ"
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id} [get]
func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	id, err := parseIDParam(r, e.ErrOrderNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	order, err := h.orderUsecase.GetOrder(r.Context(), caller, id)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

// checkout
//
//	@Summary		Оформление заказа
//	@Description	Переносит корзину в заказ, списывает остатки и очищает корзину в одной транзакции
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CheckoutRequest	true	"Адрес доставки"
//	@Success		201		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse	"Пустая корзина или недостаточно товара"
//	@Router			/orders [post]
func (h *OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return
	}

	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	order, err := h.orderUsecase.Checkout(r.Context(), caller, usecase.NewCheckoutReq(req.ShippingAddress))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	h.logger.Infof("order %s created by user %s, total %s", order.ID, caller.ID, centsToPrice(order.Total).StringFixed(2))
	WriteSuccess(w, http.StatusCreated, toOrderResponse(order))
}

// updateStatus
//
//	@Summary		Смена статуса заказа
//	@Description	Допустим любой статус из pending, processing, shipped, delivered, cancelled
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"ID заказа"
//	@Param			request	body		UpdateOrderStatusRequest	true	"Новый статус"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/orders/{id}/status [put]
func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, e.ErrOrderNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	status := domain.OrderStatus(strings.TrimSpace(req.Status))
	order, err := h.orderUsecase.UpdateStatus(r.Context(), usecase.NewUpdateOrderStatusReq(id, status))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}
