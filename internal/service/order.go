package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"payme-click-gateway/internal/model"
	"payme-click-gateway/internal/repository"
)

// OrderService backs the internal order API the shop bot calls before
// handing a customer to the payment provider.
type OrderService interface {
	CreateOrder(ctx context.Context, amount float64, items json.RawMessage) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderServiceImpl{orderRepo: orderRepo}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, amount float64, items json.RawMessage) (*model.Order, error) {
	order := &model.Order{
		OrderID: uuid.NewString(),
		// Amount arrives in major units, the ledger keeps tiyin.
		Amount: int64(math.Round(amount * 100)),
		Items:  items,
		Status: model.StatusNew,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("store order in db: %w", err)
	}
	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orderRepo.FindByOrderID(ctx, orderID)
}
