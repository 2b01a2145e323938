package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"payme-click-gateway/internal/client"
	"payme-click-gateway/internal/dto"
	"payme-click-gateway/internal/lock"
	"payme-click-gateway/internal/model"
	"payme-click-gateway/internal/repository"
)

// Click SHOP-API error codes.
const (
	ClickErrAlreadyPaid  = "-4"
	ClickErrNotFound     = "-5"
	ClickErrUpdateFailed = "-7"
	ClickErrMissingField = "-8"
	ClickErrInvoice      = "-9"
)

type CompleteRequest struct {
	ClickTransID      string
	MerchantTransID   string
	MerchantPrepareID string
	Amount            float64
	// Quantity overrides the stored order quantity when > 0.
	Quantity int
}

// ClickService is the two-phase flow for the Click provider. Domain
// failures come back as *dto.ClickError with the SHOP-API code; the payment
// state transition is committed before the fiscal receipt goes out, so a
// failing receipt never rolls back a captured payment.
type ClickService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*client.InvoiceResponse, *dto.ClickError)
	Prepare(ctx context.Context, clickTransID, merchantTransID string) (*dto.PrepareResponse, *dto.ClickError)
	Complete(ctx context.Context, req CompleteRequest) (*dto.CompleteResponse, *dto.ClickError)
}

type clickServiceImpl struct {
	orderRepo   repository.OrderRepository
	clickClient client.ClickClient
	locks       *lock.Keyed
	logger      *zap.SugaredLogger
}

func NewClickService(
	orderRepo repository.OrderRepository,
	clickClient client.ClickClient,
	locks *lock.Keyed,
	logger *zap.SugaredLogger,
) ClickService {
	return &clickServiceImpl{
		orderRepo:   orderRepo,
		clickClient: clickClient,
		locks:       locks,
		logger:      logger,
	}
}

func clickError(code, note string) *dto.ClickError {
	return &dto.ClickError{Error: code, ErrorNote: note}
}

func (s *clickServiceImpl) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*client.InvoiceResponse, *dto.ClickError) {
	if req.MerchantTransID == "" || req.PhoneNumber == "" || req.Amount <= 0 {
		return nil, clickError(ClickErrMissingField, "missing merchant_trans_id, amount or phone_number")
	}

	invoice, err := s.clickClient.CreateInvoice(ctx, req.MerchantTransID, req.Amount, req.PhoneNumber)
	if err != nil {
		s.logger.Errorw("invoice creation failed", "merchant_trans_id", req.MerchantTransID, zap.Error(err))
		return nil, clickError(ClickErrInvoice, "invoice creation failed")
	}
	return invoice, nil
}

func (s *clickServiceImpl) Prepare(ctx context.Context, clickTransID, merchantTransID string) (*dto.PrepareResponse, *dto.ClickError) {
	unlock := s.locks.Lock(merchantTransID)
	defer unlock()

	if _, err := s.orderRepo.PrepareByMerchantTransID(ctx, merchantTransID, clickTransID); err != nil {
		s.logger.Errorw("prepare failed", "merchant_trans_id", merchantTransID, zap.Error(err))
		return nil, clickError(ClickErrNotFound, "could not prepare order")
	}

	return &dto.PrepareResponse{
		ClickTransID:      clickTransID,
		MerchantTransID:   merchantTransID,
		MerchantPrepareID: merchantTransID,
		Error:             "0",
		ErrorNote:         "Success",
	}, nil
}

func (s *clickServiceImpl) Complete(ctx context.Context, req CompleteRequest) (*dto.CompleteResponse, *dto.ClickError) {
	order, items, clickErr := s.capture(ctx, req)
	if clickErr != nil {
		return nil, clickErr
	}

	// The payment is committed; the receipt goes out after the order lock is
	// released and its outcome is report-only.
	fiscal, err := s.clickClient.SubmitFiscalItems(ctx, req.ClickTransID, items, req.Amount)
	if err != nil {
		s.logger.Errorw("fiscal submission failed",
			"merchant_trans_id", order.MerchantTransID, "click_trans_id", req.ClickTransID, zap.Error(err))
		fiscal = &client.FiscalResponse{ErrorCode: -1, ErrorNote: err.Error()}
	}

	return &dto.CompleteResponse{
		ClickTransID:      req.ClickTransID,
		MerchantTransID:   req.MerchantTransID,
		MerchantConfirmID: req.MerchantPrepareID,
		Error:             "0",
		ErrorNote:         "Success",
		FiscalItems:       items,
		FiscalResponse:    fiscal,
	}, nil
}

// capture runs the state transition under the order lock and resolves the
// receipt fields, reading them from the stored order when the callback did
// not carry them.
func (s *clickServiceImpl) capture(ctx context.Context, req CompleteRequest) (*model.Order, []client.FiscalItem, *dto.ClickError) {
	unlock := s.locks.Lock(req.MerchantTransID)
	defer unlock()

	order, err := s.orderRepo.FindByMerchantTransID(ctx, req.MerchantTransID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, clickError(ClickErrNotFound, "Order not found")
		}
		s.logger.Errorw("order lookup failed", "merchant_trans_id", req.MerchantTransID, zap.Error(err))
		return nil, nil, clickError(ClickErrNotFound, "Order lookup failed")
	}

	if order.Paid() {
		return nil, nil, clickError(ClickErrAlreadyPaid, "Already paid")
	}

	if order.AdminPrice <= 0 {
		return nil, nil, clickError(ClickErrMissingField, "Missing field: unit_price and not retrieved from DB")
	}
	unitPrice := order.AdminPrice

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = int(order.Quantity)
	}
	if quantity <= 0 {
		return nil, nil, clickError(ClickErrMissingField, "Missing field: quantity and not retrieved from DB")
	}

	product := order.Product
	if product == "" {
		product = "Unknown product"
	}

	applied, err := s.orderRepo.MarkPaid(ctx, req.MerchantTransID)
	if err != nil {
		// Storage failure, not a domain rejection; the provider retries.
		s.logger.Errorw("mark paid failed", "merchant_trans_id", req.MerchantTransID, zap.Error(err))
		return nil, nil, clickError(ClickErrUpdateFailed, "could not update order")
	}
	if !applied {
		return nil, nil, clickError(ClickErrAlreadyPaid, "Already paid")
	}

	applied, err = s.orderRepo.MarkCompleted(ctx, req.MerchantTransID)
	if err != nil {
		s.logger.Errorw("mark completed failed", "merchant_trans_id", req.MerchantTransID, zap.Error(err))
	} else if !applied {
		s.logger.Warnw("mark completed not applied", "merchant_trans_id", req.MerchantTransID)
	}

	items := []client.FiscalItem{client.NewFiscalItem(product, quantity, unitPrice)}
	return order, items, nil
}
