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

// OrderUseCase оформляет заказы из корзины и отдаёт историю заказов.
type OrderUseCase struct {
	orderRepo   OrderRepository
	cartRepo    CartRepository
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	cacheRepo   CacheRepository
	trManager   TxManager
	logger      logger.Logger
	now         func() time.Time
}

func NewOrderUC(
	orderRepo OrderRepository,
	cartRepo CartRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	trManager TxManager,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		cacheRepo:   cacheRepo,
		trManager:   trManager,
		logger:      logger,
		now:         time.Now,
	}
}

// Checkout превращает корзину в заказ. Проверка остатков, создание заказа, списание остатков,
// очистка корзины и запись события выполняются в одной транзакции: либо всё, либо ничего.
func (o *OrderUseCase) Checkout(ctx context.Context, caller Caller, req *CheckoutReq) (*domain.Order, error) {
	const op = "OrderUseCase.Checkout"

	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, e.Wrap(op, e.NewValidationError("Shipping address is required"))
	}

	var order *domain.Order
	err := o.trManager.Do(ctx, func(ctx context.Context) error {
		// строки товаров блокируются до конца транзакции в порядке product_id
		lines, err := o.cartRepo.LockForCheckout(ctx, caller.ID)
		if err != nil {
			return err
		}

		if len(lines) == 0 {
			return e.ErrCartEmpty
		}

		for _, line := range lines {
			if line.Quantity > line.Stock {
				return e.NewStockError(line.Name, line.Stock)
			}
		}

		order = domain.NewOrderFromCart(caller.ID, address, lines)

		if err := o.orderRepo.Create(ctx, order); err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := o.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		// удаляем только оформленные строки: параллельно добавленные товары остаются в корзине
		lineIDs := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			lineIDs = append(lineIDs, line.ID)
		}
		if err := o.cartRepo.DeleteLines(ctx, caller.ID, lineIDs); err != nil {
			return err
		}

		return o.recordEvent(ctx, OrderCreated, order)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.logger.Infof("order created: id=%s user=%s items=%d total=%d", order.ID, caller.ID, len(order.Items), order.Total)

	productIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	if err := o.cacheRepo.DeleteProducts(ctx, productIDs); err != nil {
		o.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}

	return order, nil
}

// ListOrders возвращает заказы, новые первыми. Администратор видит все заказы.
func (o *OrderUseCase) ListOrders(ctx context.Context, caller Caller) ([]domain.Order, error) {
	var userID *uuid.UUID
	if !caller.IsAdmin() {
		userID = &caller.ID
	}

	orders, err := o.orderRepo.List(ctx, userID)
	if err != nil {
		return nil, e.Wrap("OrderUseCase.ListOrders", err)
	}

	return orders, nil
}

// GetOrder возвращает заказ владельцу или администратору.
func (o *OrderUseCase) GetOrder(ctx context.Context, caller Caller, id uuid.UUID) (*domain.Order, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !caller.IsAdmin() && order.UserID != caller.ID {
		return nil, e.Wrap(op, e.ErrAccessDenied)
	}

	return order, nil
}

// UpdateStatus задаёт заказу любой статус из допустимого набора, без проверки переходов.
func (o *OrderUseCase) UpdateStatus(ctx context.Context, req *UpdateOrderStatusReq) (*domain.Order, error) {
	const op = "OrderUseCase.UpdateStatus"

	if !req.Status.IsValid() {
		return nil, e.Wrap(op, e.ErrInvalidStatus)
	}

	var order *domain.Order
	err := o.trManager.Do(ctx, func(ctx context.Context) error {
		if err := o.orderRepo.UpdateStatus(ctx, req.OrderID, req.Status); err != nil {
			return err
		}

		var err error
		order, err = o.orderRepo.GetByID(ctx, req.OrderID)
		if err != nil {
			return err
		}

		return o.recordEvent(ctx, OrderStatusChanged, order)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

func (o *OrderUseCase) recordEvent(ctx context.Context, eventType OutboxEventType, order *domain.Order) error {
	event, err := NewOrderEvent(eventType, order, o.now())
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, event)
	return err
}
