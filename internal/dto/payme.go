package dto

import "encoding/json"

// Account identifies the order a Payme callback refers to.
type Account struct {
	OrderID string `json:"order_id"`
}

type CheckPerformParams struct {
	Account Account `json:"account"`
	Amount  int64   `json:"amount"`
}

type CreateTransactionParams struct {
	ID      string  `json:"id"`
	Time    int64   `json:"time"`
	Account Account `json:"account"`
	Amount  int64   `json:"amount"`
}

type PerformTransactionParams struct {
	ID      string  `json:"id"`
	Account Account `json:"account"`
}

type CheckTransactionParams struct {
	ID      string  `json:"id"`
	Account Account `json:"account"`
}

type CancelTransactionParams struct {
	ID      string  `json:"id"`
	Account Account `json:"account"`
	Reason  *int    `json:"reason"`
}

type ChangePasswordParams struct {
	Password string `json:"password"`
}

type ReceiptDetail struct {
	ReceiptType int             `json:"receipt_type"`
	Items       json.RawMessage `json:"items"`
}

type CheckPerformResult struct {
	Allow  bool          `json:"allow"`
	Detail ReceiptDetail `json:"detail"`
}

type CreateTransactionResult struct {
	CreateTime  int64  `json:"create_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
}

type PerformTransactionResult struct {
	Transaction string `json:"transaction"`
	PerformTime int64  `json:"perform_time"`
	State       int    `json:"state"`
}

type CheckTransactionResult struct {
	CreateTime  int64  `json:"create_time"`
	PerformTime int64  `json:"perform_time"`
	CancelTime  int64  `json:"cancel_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
	Reason      *int   `json:"reason"`
}

type CancelTransactionResult struct {
	Transaction string `json:"transaction"`
	CancelTime  int64  `json:"cancel_time"`
	State       int    `json:"state"`
}

type ChangePasswordResult struct {
	Success bool `json:"success"`
}
