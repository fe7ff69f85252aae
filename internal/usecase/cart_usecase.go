package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/google/uuid"
)

// CartUseCase управляет корзиной пользователя. Каждая мутация возвращает обновлённую корзину.
type CartUseCase struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	trManager   TxManager
	logger      logger.Logger
}

func NewCartUC(cartRepo CartRepository, productRepo ProductRepository, trManager TxManager, logger logger.Logger) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		trManager:   trManager,
		logger:      logger,
	}
}

// GetCart возвращает строки корзины с актуальными ценами и остатками.
func (c *CartUseCase) GetCart(ctx context.Context, caller Caller) (*domain.Cart, error) {
	items, err := c.cartRepo.GetItems(ctx, caller.ID)
	if err != nil {
		return nil, e.Wrap("CartUseCase.GetCart", err)
	}

	return domain.NewCart(items), nil
}

// AddItem добавляет товар в корзину или увеличивает количество уже добавленного.
// Итоговое количество не может превышать остаток товара.
func (c *CartUseCase) AddItem(ctx context.Context, caller Caller, req *AddCartItemReq) (*domain.Cart, error) {
	const op = "CartUseCase.AddItem"

	if req.ProductID == uuid.Nil {
		return nil, e.Wrap(op, e.NewValidationError("Product ID is required"))
	}
	if req.Quantity < 1 || req.Quantity > domain.MaxStock {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	err := c.trManager.Do(ctx, func(ctx context.Context) error {
		product, err := c.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}

		quantity, err := c.cartRepo.AddQuantity(ctx, &domain.CartItem{
			ID:        uuid.New(),
			UserID:    caller.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			return err
		}

		if quantity > product.Stock {
			return e.ErrInsufficientStock
		}

		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.GetCart(ctx, caller)
}

// UpdateItem задаёт абсолютное количество. Количество 0 удаляет строку.
func (c *CartUseCase) UpdateItem(ctx context.Context, caller Caller, req *UpdateCartItemReq) (*domain.Cart, error) {
	const op = "CartUseCase.UpdateItem"

	if req.Quantity < 0 || req.Quantity > domain.MaxStock {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	item, err := c.cartRepo.GetItem(ctx, caller.ID, req.ItemID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	switch {
	case req.Quantity == 0:
		if _, err := c.cartRepo.Delete(ctx, caller.ID, item.ID); err != nil {
			return nil, e.Wrap(op, err)
		}
	case req.Quantity > item.Stock:
		return nil, e.Wrap(op, e.ErrInsufficientStock)
	default:
		if err := c.cartRepo.SetQuantity(ctx, caller.ID, item.ID, req.Quantity); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	return c.GetCart(ctx, caller)
}

// RemoveItem удаляет строку корзины. Повторное удаление не считается ошибкой.
func (c *CartUseCase) RemoveItem(ctx context.Context, caller Caller, itemID uuid.UUID) (*domain.Cart, error) {
	const op = "CartUseCase.RemoveItem"

	deleted, err := c.cartRepo.Delete(ctx, caller.ID, itemID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !deleted {
		c.logger.Debugf("%s: cart item %s not found for user %s", op, itemID, caller.ID)
	}

	return c.GetCart(ctx, caller)
}

func (c *CartUseCase) Clear(ctx context.Context, caller Caller) (*domain.Cart, error) {
	if err := c.cartRepo.Clear(ctx, caller.ID); err != nil {
		return nil, e.Wrap("CartUseCase.Clear", err)
	}

	return domain.NewCart(nil), nil
}
