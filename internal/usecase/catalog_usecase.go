package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	DefaultProductsLimit = 50
	MaxProductsLimit     = 100

	cacheWriteTimeout = 500 * time.Millisecond
)

// CatalogUseCase реализует бизнес-логику каталога: категории, товары, изображения.
type CatalogUseCase struct {
	categoryRepo CategoryRepository
	productRepo  ProductRepository
	cacheRepo    CacheRepository
	imagesInfra  ImagesInfra
	logger       logger.Logger
}

func NewCatalogUC(
	categoryRepo CategoryRepository,
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cacheRepo:    cacheRepo,
		imagesInfra:  imagesInfra,
		logger:       logger,
	}
}

// ListCategories возвращает категории с числом товаров, сначала из кэша.
func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CatalogUseCase.ListCategories"

	cached, err := c.cacheRepo.GetCategories(ctx)
	if err != nil {
		c.logger.Warnf("categories cache read failed: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	version, versionErr := c.cacheRepo.CategoriesVersion(ctx)
	if versionErr != nil {
		c.logger.Warnf("categories cache version read failed: %v", e.Wrap(op, versionErr))
	}

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Фоновое добавление в кэш
	if versionErr == nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
			defer cancel()

			if err := c.cacheRepo.SetCategories(bgCtx, categories, version); err != nil {
				c.logger.Warnf("Failed to cache categories in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return categories, nil
}

func (c *CatalogUseCase) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := c.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap("CatalogUseCase.GetCategory", err)
	}

	return category, nil
}

func (c *CatalogUseCase) CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.CreateCategory"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, e.Wrap(op, e.NewValidationError("Name is required"))
	}

	category, err := c.categoryRepo.Create(ctx, domain.NewCategory(name, req.Description))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.invalidate(ctx, op, nil, true)

	return category, nil
}

// UpdateCategory применяет частичное обновление: незаданные поля сохраняют прежние значения.
func (c *CatalogUseCase) UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	const op = "CatalogUseCase.UpdateCategory"

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, e.Wrap(op, e.NewValidationError("Name cannot be empty"))
		}
		patch.Name = &name
	}

	category, err := c.categoryRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.invalidate(ctx, op, nil, true)
	// название категории входит в закэшированные карточки товаров
	if patch.Name != nil {
		if err := c.cacheRepo.FlushProducts(ctx); err != nil {
			c.logger.Warnf("Failed to flush products cache: %v", e.Wrap(op, err))
		}
	}

	return category, nil
}

// DeleteCategory удаляет категорию. Категорию с товарами удалить нельзя.
func (c *CatalogUseCase) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	const op = "CatalogUseCase.DeleteCategory"

	if err := c.categoryRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	c.invalidate(ctx, op, nil, true)

	return nil
}

// ListProducts возвращает страницу каталога с общим числом подходящих товаров.
func (c *CatalogUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) (*ListProductsRes, error) {
	const op = "CatalogUseCase.ListProducts"

	filter = normalizeFilter(filter)

	products, total, err := c.productRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewListProductsRes(products, total, filter.Limit, filter.Offset), nil
}

// GetProduct возвращает товар, сначала пытаясь найти его в кэше.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	const op = "CatalogUseCase.GetProduct"

	cached, err := c.cacheRepo.GetProduct(ctx, id)
	if err != nil {
		c.logger.Warnf("product cache read failed: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return cached, nil
	}

	// поколение читается до БД: инвалидация после этой точки отменит фоновую запись
	version, versionErr := c.cacheRepo.ProductVersion(ctx, id)
	if versionErr != nil {
		c.logger.Warnf("product cache version read failed: %v", e.Wrap(op, versionErr))
	}

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if versionErr == nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
			defer cancel()

			if err := c.cacheRepo.SetProduct(bgCtx, product, version); err != nil {
				c.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return product, nil
}

func (c *CatalogUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.CreateProduct"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, e.Wrap(op, e.NewValidationError("Name and price are required"))
	}
	if req.Price < 0 {
		return nil, e.Wrap(op, e.ErrInvalidPrice)
	}
	if req.Stock < 0 || req.Stock > domain.MaxStock {
		return nil, e.Wrap(op, e.ErrInvalidStock)
	}
	if err := c.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := c.productRepo.Create(ctx, domain.NewProduct(name, req.Description, req.Price, req.ImageURL, req.CategoryID, req.Stock))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.invalidate(ctx, op, nil, true)

	return product, nil
}

// UpdateProduct применяет частичное обновление товара. Остаток задаётся абсолютным значением.
func (c *CatalogUseCase) UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	const op = "CatalogUseCase.UpdateProduct"

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, e.Wrap(op, e.NewValidationError("Name cannot be empty"))
		}
		patch.Name = &name
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, e.Wrap(op, e.ErrInvalidPrice)
	}
	if patch.Stock != nil && (*patch.Stock < 0 || *patch.Stock > domain.MaxStock) {
		return nil, e.Wrap(op, e.ErrInvalidStock)
	}
	if err := c.ensureCategory(ctx, patch.CategoryID); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := c.productRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.invalidate(ctx, op, []uuid.UUID{id}, true)

	return product, nil
}

// DeleteProduct удаляет товар. Товар, попавший в заказы, удалить нельзя.
func (c *CatalogUseCase) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	const op = "CatalogUseCase.DeleteProduct"

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := c.productRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	c.invalidate(ctx, op, []uuid.UUID{id}, true)
	c.cleanupImageURL(product.ImageURL)

	return nil
}

// UploadProductImage сохраняет изображение в объектном хранилище и проставляет товару image_url.
// Предыдущее изображение удаляется в фоне.
func (c *CatalogUseCase) UploadProductImage(ctx context.Context, req *UploadProductImageReq) (*domain.Product, error) {
	const op = "CatalogUseCase.UploadProductImage"

	if len(req.Image.Data) == 0 {
		return nil, e.Wrap(op, e.ErrNoImages)
	}

	product, err := c.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	uploaded, err := c.imagesInfra.UploadImage(ctx, NewUploadImageReq("products/"+product.ID.String(), req.Image))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	updated, err := c.productRepo.Update(ctx, product.ID, domain.ProductPatch{ImageURL: &uploaded.URL})
	if err != nil {
		c.logger.Warnf("Cleaning up orphaned image after update failure. product_id: %s, error: %v", product.ID, e.Wrap(op, err))
		c.imagesInfra.CleanupImages([]string{uploaded.Key})
		return nil, e.Wrap(op, err)
	}

	c.invalidate(ctx, op, []uuid.UUID{product.ID}, false)
	c.cleanupImageURL(product.ImageURL)

	return updated, nil
}

func (c *CatalogUseCase) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}

	if _, err := c.categoryRepo.GetByID(ctx, *id); err != nil {
		if e.IsNotFound(err) {
			return e.ErrCategoryNotExists
		}
		return err
	}

	return nil
}

func (c *CatalogUseCase) cleanupImageURL(url *string) {
	if url == nil {
		return
	}

	if key, ok := c.imagesInfra.KeyFromURL(*url); ok {
		c.imagesInfra.CleanupImages([]string{key})
	}
}

// invalidate сбрасывает кэш товаров и списка категорий. Ошибки кэша не прерывают операцию.
func (c *CatalogUseCase) invalidate(ctx context.Context, op string, productIDs []uuid.UUID, categories bool) {
	if len(productIDs) > 0 {
		if err := c.cacheRepo.DeleteProducts(ctx, productIDs); err != nil {
			c.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
		}
	}

	if categories {
		if err := c.cacheRepo.DeleteCategories(ctx); err != nil {
			c.logger.Warnf("Failed to delete categories from cache: %v", e.Wrap(op, err))
		}
	}
}

func normalizeFilter(filter domain.ProductFilter) domain.ProductFilter {
	filter.Search = strings.TrimSpace(filter.Search)

	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultProductsLimit
	case filter.Limit > MaxProductsLimit:
		filter.Limit = MaxProductsLimit
	}

	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return filter
}
