package dto

import "encoding/json"

type CreateOrderRequest struct {
	// Amount in major units; stored in tiyin (x100).
	Amount float64         `json:"amount"`
	Items  json.RawMessage `json:"items"`
}

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

type CreateInvoiceRequest struct {
	MerchantTransID string  `json:"merchant_trans_id"`
	Amount          float64 `json:"amount"`
	PhoneNumber     string  `json:"phone_number"`
}

type ClickError struct {
	Error     string `json:"error"`
	ErrorNote string `json:"error_note"`
}

type PrepareResponse struct {
	ClickTransID      string `json:"click_trans_id"`
	MerchantTransID   string `json:"merchant_trans_id"`
	MerchantPrepareID string `json:"merchant_prepare_id"`
	Error             string `json:"error"`
	ErrorNote         string `json:"error_note"`
}

type CompleteResponse struct {
	ClickTransID      string `json:"click_trans_id"`
	MerchantTransID   string `json:"merchant_trans_id"`
	MerchantConfirmID string `json:"merchant_confirm_id"`
	Error             string `json:"error"`
	ErrorNote         string `json:"error_note"`
	FiscalItems       any    `json:"fiscal_items,omitempty"`
	FiscalResponse    any    `json:"fiscal_response,omitempty"`
}
