package repository

import (
	"context"

	"gorm.io/gorm"

	"payme-click-gateway/internal/model"
)

// OrderRepository is the storage surface the payment flows run against.
// Every mutating method is guarded by the status the caller observed, so a
// write that lost a race applies zero rows and reports applied=false instead
// of clobbering a concurrent transition.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	FindByMerchantTransID(ctx context.Context, merchantTransID string) (*model.Order, error)

	// AttachTransaction moves a new order to processing, stamping the
	// provider transaction id and create_time.
	AttachTransaction(ctx context.Context, orderID, transactionID string, createTime int64) (bool, error)
	// MarkPerformed moves a processing order to completed, stamping perform_time.
	MarkPerformed(ctx context.Context, orderID string, performTime int64) (bool, error)
	// MarkCancelled moves an order in one of fromStatuses to toStatus,
	// stamping cancel_time and the cancellation reason.
	MarkCancelled(ctx context.Context, orderID string, fromStatuses []string, toStatus string, cancelTime int64, reason *int) (bool, error)

	// PrepareByMerchantTransID atomically updates-or-inserts the order for a
	// Click prepare callback: status pending, click transaction id recorded.
	PrepareByMerchantTransID(ctx context.Context, merchantTransID, clickTransID string) (*model.Order, error)
	// MarkPaid moves a pending Click order to processing.
	MarkPaid(ctx context.Context, merchantTransID string) (bool, error)
	// MarkCompleted moves a processing Click order to completed.
	MarkCompleted(ctx context.Context, merchantTransID string) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{db: db}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) FindByMerchantTransID(ctx context.Context, merchantTransID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("merchant_trans_id = ?", merchantTransID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) AttachTransaction(ctx context.Context, orderID, transactionID string, createTime int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusNew).
		Updates(map[string]interface{}{
			"status":         model.StatusProcessing,
			"transaction_id": transactionID,
			"create_time":    createTime,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *orderRepoImpl) MarkPerformed(ctx context.Context, orderID string, performTime int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusProcessing).
		Updates(map[string]interface{}{
			"status":       model.StatusCompleted,
			"perform_time": performTime,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *orderRepoImpl) MarkCancelled(ctx context.Context, orderID string, fromStatuses []string, toStatus string, cancelTime int64, reason *int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status IN ?", orderID, fromStatuses).
		Updates(map[string]interface{}{
			"status":        toStatus,
			"cancel_time":   cancelTime,
			"cancel_reason": reason,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *orderRepoImpl) PrepareByMerchantTransID(ctx context.Context, merchantTransID, clickTransID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Order{}).
			Where("merchant_trans_id = ?", merchantTransID).
			Updates(map[string]interface{}{
				"status":         model.StatusPending,
				"click_trans_id": clickTransID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Create(&model.Order{
				OrderID:         merchantTransID,
				MerchantTransID: merchantTransID,
				Status:          model.StatusPending,
				ClickTransID:    clickTransID,
			}).Error; err != nil {
				return err
			}
		}
		return tx.Where("merchant_trans_id = ?", merchantTransID).First(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, merchantTransID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("merchant_trans_id = ? AND status = ?", merchantTransID, model.StatusPending).
		Update("status", model.StatusProcessing)
	return result.RowsAffected > 0, result.Error
}

func (r *orderRepoImpl) MarkCompleted(ctx context.Context, merchantTransID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("merchant_trans_id = ? AND status = ?", merchantTransID, model.StatusProcessing).
		Update("status", model.StatusCompleted)
	return result.RowsAffected > 0, result.Error
}
