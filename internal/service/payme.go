package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"payme-click-gateway/internal/dto"
	"payme-click-gateway/internal/lock"
	"payme-click-gateway/internal/model"
	"payme-click-gateway/internal/protocol"
	"payme-click-gateway/internal/repository"
	"payme-click-gateway/internal/secret"
)

// PaymeService implements the merchant side of the Payme billing protocol.
// Domain failures come back as *protocol.Error values ready for the response
// envelope; infrastructure failures are logged and collapsed into the
// generic unknown error so the provider retries on its own schedule.
type PaymeService interface {
	CheckPerform(ctx context.Context, p dto.CheckPerformParams) (*dto.CheckPerformResult, *protocol.Error)
	CreateTransaction(ctx context.Context, p dto.CreateTransactionParams) (*dto.CreateTransactionResult, *protocol.Error)
	PerformTransaction(ctx context.Context, p dto.PerformTransactionParams) (*dto.PerformTransactionResult, *protocol.Error)
	CheckTransaction(ctx context.Context, p dto.CheckTransactionParams) (*dto.CheckTransactionResult, *protocol.Error)
	CancelTransaction(ctx context.Context, p dto.CancelTransactionParams) (*dto.CancelTransactionResult, *protocol.Error)
	ChangePassword(ctx context.Context, p dto.ChangePasswordParams) (*dto.ChangePasswordResult, *protocol.Error)
}

type paymeServiceImpl struct {
	orderRepo repository.OrderRepository
	locks     *lock.Keyed
	secrets   *secret.Store
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewPaymeService(
	orderRepo repository.OrderRepository,
	locks *lock.Keyed,
	secrets *secret.Store,
	logger *zap.SugaredLogger,
) PaymeService {
	return &paymeServiceImpl{
		orderRepo: orderRepo,
		locks:     locks,
		secrets:   secrets,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *paymeServiceImpl) nowMillis() int64 {
	return s.now().UnixMilli()
}

// findOrder translates storage outcomes into protocol errors.
func (s *paymeServiceImpl) findOrder(ctx context.Context, orderID string) (*model.Order, *protocol.Error) {
	if orderID == "" {
		return nil, protocol.ErrOrderNotFound()
	}
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, protocol.ErrOrderNotFound()
		}
		s.logger.Errorw("order lookup failed", "order_id", orderID, zap.Error(err))
		return nil, protocol.ErrUnknown()
	}
	return order, nil
}

func (s *paymeServiceImpl) CheckPerform(ctx context.Context, p dto.CheckPerformParams) (*dto.CheckPerformResult, *protocol.Error) {
	order, rpcErr := s.findOrder(ctx, p.Account.OrderID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if order.Amount != p.Amount {
		return nil, protocol.ErrAmountMismatch()
	}
	return &dto.CheckPerformResult{
		Allow: true,
		Detail: dto.ReceiptDetail{
			ReceiptType: 0,
			Items:       json.RawMessage(order.Items),
		},
	}, nil
}

func (s *paymeServiceImpl) CreateTransaction(ctx context.Context, p dto.CreateTransactionParams) (*dto.CreateTransactionResult, *protocol.Error) {
	unlock := s.locks.Lock(p.Account.OrderID)
	defer unlock()

	order, rpcErr := s.findOrder(ctx, p.Account.OrderID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if order.Amount != p.Amount {
		return nil, protocol.ErrAmountMismatch()
	}

	switch order.Status {
	case model.StatusNew:
		createTime := s.nowMillis()
		applied, err := s.orderRepo.AttachTransaction(ctx, order.OrderID, p.ID, createTime)
		if err != nil {
			s.logger.Errorw("attach transaction failed", "order_id", order.OrderID, zap.Error(err))
			return nil, protocol.ErrUnknown()
		}
		if !applied {
			// Lost a race despite the per-order lock; the guarded update
			// refused to overwrite whatever won.
			s.logger.Warnw("create transaction conflict", "order_id", order.OrderID)
			return nil, protocol.ErrUnknown()
		}
		return &dto.CreateTransactionResult{
			CreateTime:  createTime,
			Transaction: order.TransactionLabel(),
			State:       model.StateCreated,
		}, nil

	case model.StatusProcessing:
		if order.TransactionID == p.ID {
			// Idempotent replay: the stored create_time, never a fresh one.
			return &dto.CreateTransactionResult{
				CreateTime:  order.CreateTime,
				Transaction: order.TransactionLabel(),
				State:       model.StateCreated,
			}, nil
		}
		return nil, protocol.ErrAnotherTransaction()

	default:
		return nil, protocol.ErrUnknown()
	}
}

func (s *paymeServiceImpl) PerformTransaction(ctx context.Context, p dto.PerformTransactionParams) (*dto.PerformTransactionResult, *protocol.Error) {
	unlock := s.locks.Lock(p.Account.OrderID)
	defer unlock()

	order, rpcErr := s.findOrder(ctx, p.Account.OrderID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if order.TransactionID != p.ID {
		return nil, protocol.ErrTransactionID()
	}

	switch order.Status {
	case model.StatusProcessing:
		performTime := s.nowMillis()
		applied, err := s.orderRepo.MarkPerformed(ctx, order.OrderID, performTime)
		if err != nil {
			s.logger.Errorw("perform transaction failed", "order_id", order.OrderID, zap.Error(err))
			return nil, protocol.ErrUnknown()
		}
		if !applied {
			s.logger.Warnw("perform transaction conflict", "order_id", order.OrderID)
			return nil, protocol.ErrUnknown()
		}
		return &dto.PerformTransactionResult{
			Transaction: order.TransactionLabel(),
			PerformTime: performTime,
			State:       model.StatePerformed,
		}, nil

	case model.StatusCompleted:
		return &dto.PerformTransactionResult{
			Transaction: order.TransactionLabel(),
			PerformTime: order.PerformTime,
			State:       model.StatePerformed,
		}, nil

	case model.StatusCancelled, model.StatusRefunded:
		return nil, protocol.ErrCancelledTransaction()

	default:
		return nil, protocol.ErrUnknown()
	}
}

func (s *paymeServiceImpl) CheckTransaction(ctx context.Context, p dto.CheckTransactionParams) (*dto.CheckTransactionResult, *protocol.Error) {
	order, rpcErr := s.findOrder(ctx, p.Account.OrderID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if order.TransactionID != p.ID {
		return nil, protocol.ErrTransactionID()
	}
	return &dto.CheckTransactionResult{
		CreateTime:  order.CreateTime,
		PerformTime: order.PerformTime,
		CancelTime:  order.CancelTime,
		Transaction: order.TransactionLabel(),
		State:       model.StateOf(order.Status),
		Reason:      order.CancelReason,
	}, nil
}

func (s *paymeServiceImpl) CancelTransaction(ctx context.Context, p dto.CancelTransactionParams) (*dto.CancelTransactionResult, *protocol.Error) {
	unlock := s.locks.Lock(p.Account.OrderID)
	defer unlock()

	order, rpcErr := s.findOrder(ctx, p.Account.OrderID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if order.TransactionID != p.ID {
		return nil, protocol.ErrTransactionID()
	}

	switch order.Status {
	case model.StatusNew, model.StatusProcessing:
		return s.cancelTo(ctx, order, []string{model.StatusNew, model.StatusProcessing}, model.StatusCancelled, model.StateCancelled, p.Reason)

	case model.StatusCompleted:
		// Cancellation after capture is a refund.
		return s.cancelTo(ctx, order, []string{model.StatusCompleted}, model.StatusRefunded, model.StateRefunded, p.Reason)

	case model.StatusCancelled, model.StatusRefunded:
		// Terminal replay: stored cancel_time, no re-stamping.
		return &dto.CancelTransactionResult{
			Transaction: order.TransactionLabel(),
			CancelTime:  order.CancelTime,
			State:       model.StateOf(order.Status),
		}, nil

	default:
		return nil, protocol.ErrCannotCancel()
	}
}

func (s *paymeServiceImpl) cancelTo(ctx context.Context, order *model.Order, from []string, to string, state int, reason *int) (*dto.CancelTransactionResult, *protocol.Error) {
	cancelTime := s.nowMillis()
	applied, err := s.orderRepo.MarkCancelled(ctx, order.OrderID, from, to, cancelTime, reason)
	if err != nil {
		s.logger.Errorw("cancel transaction failed", "order_id", order.OrderID, zap.Error(err))
		return nil, protocol.ErrUnknown()
	}
	if !applied {
		s.logger.Warnw("cancel transaction conflict", "order_id", order.OrderID)
		return nil, protocol.ErrUnknown()
	}
	return &dto.CancelTransactionResult{
		Transaction: order.TransactionLabel(),
		CancelTime:  cancelTime,
		State:       state,
	}, nil
}

func (s *paymeServiceImpl) ChangePassword(ctx context.Context, p dto.ChangePasswordParams) (*dto.ChangePasswordResult, *protocol.Error) {
	if err := s.secrets.Rotate(p.Password); err != nil {
		return nil, protocol.ErrPassword()
	}
	s.logger.Infow("merchant key rotated", "version", s.secrets.Version())
	return &dto.ChangePasswordResult{Success: true}, nil
}
