package model

import "time"

// Order statuses. Payme drives new → processing → completed with
// cancelled/refunded branches; Click parks an order in pending between
// prepare and complete.
const (
	StatusNew        = "new"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

// Payme transaction states as reported in callback results.
const (
	StateUnknown   = 0
	StateCreated   = 1
	StatePerformed = 2
	StateCancelled = -1
	StateRefunded  = -2
)

// StateOf maps an order status to the Payme numeric transaction state.
func StateOf(status string) int {
	switch status {
	case StatusProcessing:
		return StateCreated
	case StatusCompleted:
		return StatePerformed
	case StatusCancelled:
		return StateCancelled
	case StatusRefunded:
		return StateRefunded
	default:
		return StateUnknown
	}
}

// allowedTransitions lists the valid status transitions. The key is the
// current status, the value the statuses it may move to. Terminal statuses
// map to an empty slice.
var allowedTransitions = map[string][]string{
	StatusNew:        {StatusProcessing, StatusCancelled},
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order is one purchase tracked through the payment lifecycle. Amount is in
// tiyin (minor currency units); the three *Time fields are millisecond
// timestamps stamped once by the transition that causes them, zero until then.
type Order struct {
	OrderID       string `gorm:"primaryKey;size:64;not null"`
	Amount        int64  `gorm:"not null"`
	Items         []byte `gorm:"type:json"`
	Status        string `gorm:"size:32;index;not null"`
	TransactionID string `gorm:"size:64;index"`
	CreateTime    int64
	PerformTime   int64
	CancelTime    int64
	CancelReason  *int

	// Click flow fields. MerchantTransID keys prepare/complete callbacks,
	// ClickTransID is the provider-side payment id received at prepare.
	MerchantTransID string `gorm:"size:64;index"`
	ClickTransID    string `gorm:"size:64"`

	// Receipt fields, independently settable before a transaction exists.
	AdminPrice int64
	Quantity   int32
	Product    string `gorm:"size:128"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Paid reports whether funds were received for the order. Status is the
// single source of truth for lifecycle position; paid-ness is derived from it.
func (o *Order) Paid() bool {
	return o.Status == StatusProcessing || o.Status == StatusCompleted || o.Status == StatusRefunded
}

// TransactionLabel is the provider-visible transaction identifier returned
// by every Payme operation.
func (o *Order) TransactionLabel() string {
	return "000" + o.OrderID
}
