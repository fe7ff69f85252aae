package http

import (
	"net/http"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type CategoryHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCategoryHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// listCategories
//
//	@Summary	Список категорий с числом товаров
//	@Tags		categories
//	@Produce	json
//	@Success	200	{array}	CategoryResponse
//	@Router		/categories [get]
func (h *CategoryHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalogUsecase.ListCategories(r.Context())
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrCategoryResponse(cats))
}

// getCategory
//
//	@Summary	Категория по id
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"ID категории"
//	@Success	200	{object}	CategoryResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/categories/{id} [get]
func (h *CategoryHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, e.ErrCategoryNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	cat, err := h.catalogUsecase.GetCategory(r.Context(), id)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(cat))
}

// createCategory
//
//	@Summary	Создание категории
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CategoryRequest	true	"Категория"
//	@Success	201		{object}	CategoryResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Router		/categories [post]
func (h *CategoryHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	var name string
	if req.Name != nil {
		name = *req.Name
	}

	cat, err := h.catalogUsecase.CreateCategory(r.Context(), usecase.NewCreateCategoryReq(name, req.Description))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryResponse(cat))
}

// updateCategory
//
//	@Summary		Изменение категории
//	@Description	Поля, которых нет в запросе, не меняются
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"ID категории"
//	@Param			request	body		CategoryRequest	true	"Изменяемые поля"
//	@Success		200		{object}	CategoryResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/categories/{id} [put]
func (h *CategoryHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, e.ErrCategoryNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	cat, err := h.catalogUsecase.UpdateCategory(r.Context(), id, req.toPatch())
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(cat))
}

// deleteCategory
//
//	@Summary	Удаление категории
//	@Tags		categories
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"ID категории"
//	@Success	200	{object}	MessageResponse
//	@Failure	400	{object}	ErrorResponse	"В категории есть товары"
//	@Failure	404	{object}	ErrorResponse
//	@Router		/categories/{id} [delete]
func (h *CategoryHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, e.ErrCategoryNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	if err := h.catalogUsecase.DeleteCategory(r.Context(), id); err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewMessageResponse("Category deleted successfully"))
}
