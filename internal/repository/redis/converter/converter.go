package converter

import (
	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/google/uuid"
)

type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) (*domain.Product, error)
}

type CategoryConverter interface {
	ToArrRedisModel(entities []domain.Category) []CategoryRedisModel
	ToArrEntity(models []CategoryRedisModel) ([]domain.Category, error)
}

type ProductConv struct{}

func (ProductConv) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	model := &ProductRedisModel{
		ID:           entity.ID.String(),
		Name:         entity.Name,
		Description:  entity.Description,
		Price:        entity.Price,
		ImageURL:     entity.ImageURL,
		CategoryName: entity.CategoryName,
		Stock:        entity.Stock,
		CreatedAt:    entity.CreatedAt,
	}

	if entity.CategoryID != nil {
		id := entity.CategoryID.String()
		model.CategoryID = &id
	}

	return model
}

func (ProductConv) ToEntity(model *ProductRedisModel) (*domain.Product, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:           id,
		Name:         model.Name,
		Description:  model.Description,
		Price:        model.Price,
		ImageURL:     model.ImageURL,
		CategoryName: model.CategoryName,
		Stock:        model.Stock,
		CreatedAt:    model.CreatedAt,
	}

	if model.CategoryID != nil {
		categoryID, err := uuid.Parse(*model.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &categoryID
	}

	return product, nil
}

type CategoryConv struct{}

func (CategoryConv) ToArrRedisModel(entities []domain.Category) []CategoryRedisModel {
	res := make([]CategoryRedisModel, 0, len(entities))
	for _, c := range entities {
		res = append(res, CategoryRedisModel{
			ID:           c.ID.String(),
			Name:         c.Name,
			Description:  c.Description,
			ProductCount: c.ProductCount,
			CreatedAt:    c.CreatedAt,
		})
	}
	return res
}

func (CategoryConv) ToArrEntity(models []CategoryRedisModel) ([]domain.Category, error) {
	res := make([]domain.Category, 0, len(models))
	for _, m := range models {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, err
		}

		res = append(res, domain.Category{
			ID:           id,
			Name:         m.Name,
			Description:  m.Description,
			ProductCount: m.ProductCount,
			CreatedAt:    m.CreatedAt,
		})
	}
	return res, nil
}
