package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
)

type ProductHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
	maxImageSize   int64
}

func NewProductHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger, maxImageSize int64) *ProductHandler {
	return &ProductHandler{catalogUsecase: catalogUsecase, logger: logger, maxImageSize: maxImageSize}
}

// listProducts
//
//	@Summary		Каталог товаров
//	@Description	Фильтр по категории и поиск по названию или описанию, без учёта регистра
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"ID категории"
//	@Param			search		query		string	false	"Подстрока поиска"
//	@Param			limit		query		int		false	"Размер страницы (1..100, по умолчанию 50)"
//	@Param			offset		query		int		false	"Смещение"
//	@Success		200			{object}	ProductListResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/products [get]
func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", usecase.DefaultProductsLimit)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	offset, err := parseIntQuery(r, "offset", 0)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	filter := domain.ProductFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			respondError(h.logger, w, e.NewValidationError("Invalid category id"))
			return
		}
		filter.CategoryID = &categoryID
	}

	res, err := h.catalogUsecase.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ProductListResponse{
		Products: toArrProductResponse(res.Products),
		Total:    res.Total,
		Limit:    res.Limit,
		Offset:   res.Offset,
	})
}

// getProduct
//
//	@Summary	Товар по id
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (h *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, e.ErrProductNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	product, err := h.catalogUsecase.GetProduct(r.Context(), id)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// createProduct
//
//	@Summary	Создание товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		ProductRequest	true	"Товар"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure	403		{object}	ErrorResponse
//	@Router		/products [post]
func (h *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	if req.Name == nil || req.Price == nil {
		respondError(h.logger, w, e.NewValidationError("Name and price are required"))
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	var stock int
	if patch.Stock != nil {
		stock = *patch.Stock
	}

	product, err := h.catalogUsecase.CreateProduct(r.Context(), usecase.NewCreateProductReq(
		*patch.Name,
		patch.Description,
		*patch.Price,
		patch.ImageURL,
		patch.CategoryID,
		stock,
	))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// updateProduct
//
//	@Summary		Изменение товара
//	@Description	Поля, которых нет в запросе, не меняются
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"ID товара"
//	@Param			request	body		ProductRequest	true	"Изменяемые поля"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/{id} [put]
func (h *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, e.ErrProductNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	product, err := h.catalogUsecase.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	MessageResponse
//	@Failure	400	{object}	ErrorResponse	"Товар есть в заказах"
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, e.ErrProductNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	if err := h.catalogUsecase.DeleteProduct(r.Context(), id); err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewMessageResponse("Product deleted successfully"))
}

// uploadImage
//
//	@Summary		Загрузка изображения товара
//	@Description	Заменяет изображение товара. Поддерживаются jpeg, png, webp и gif
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"ID товара"
//	@Param			image	formData	file	true	"Изображение"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse	"Нет файла, неверный тип или слишком большой размер"
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/{id}/image [post]
func (h *ProductHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	const (
		multipartOverhead = 1 << 20
		maxMemory         = 32 << 20
	)

	id, err := parseIDParam(r, e.ErrProductNotFound)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+multipartOverhead)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, err.Error(), r.Header.Get("Content-Type"))
		respondError(h.logger, w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	image, err := parseImage(r.MultipartForm.File["image"], h.maxImageSize)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	product, err := h.catalogUsecase.UploadProductImage(r.Context(), usecase.NewUploadProductImageReq(id, *image))
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}
