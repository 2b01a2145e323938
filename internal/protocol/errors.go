package protocol

// Error codes fixed by the Payme merchant API.
const (
	CodeParseError     = -32700
	CodeUnauthorized   = -32504
	CodeUnknownMethod  = -32601
	CodePassword       = -32400
	CodeOrderNotFound  = -31099
	CodeAmountMismatch = -31001
	CodeTransactionID  = -31003
	CodeCannotCancel   = -31007
	CodeUnknown        = -31008
)

// Message is the trilingual error text Payme requires on every error.
type Message struct {
	RU string `json:"ru"`
	UZ string `json:"uz"`
	EN string `json:"en"`
}

type Error struct {
	Code    int     `json:"code"`
	Message Message `json:"message"`
	Data    any     `json:"data,omitempty"`
}

func ErrInvalidJSON() *Error {
	return &Error{
		Code: CodeParseError,
		Message: Message{
			RU: "Невозможно разобрать JSON",
			UZ: "JSON tahlil qilib bo'lmadi",
			EN: "Could not parse JSON",
		},
	}
}

func ErrUnauthorized() *Error {
	return &Error{
		Code: CodeUnauthorized,
		Message: Message{
			RU: "Ошибка авторизации",
			UZ: "Avtorizatsiyada xatolik",
			EN: "Error during authorization",
		},
	}
}

func ErrUnknownMethod(method string) *Error {
	return &Error{
		Code: CodeUnknownMethod,
		Message: Message{
			RU: "Неизвестный метод",
			UZ: "Noma'lum metod",
			EN: "Unknown method",
		},
		Data: method,
	}
}

func ErrOrderNotFound() *Error {
	return &Error{
		Code: CodeOrderNotFound,
		Message: Message{
			RU: "Номер заказа не найден",
			UZ: "Buyurtma raqami topilmadi",
			EN: "Order number cannot be found",
		},
		Data: "order",
	}
}

func ErrAmountMismatch() *Error {
	return &Error{
		Code: CodeAmountMismatch,
		Message: Message{
			RU: "Неверная сумма заказа",
			UZ: "Buyurtma summasi noto'g'ri",
			EN: "Order amount is incorrect",
		},
		Data: "amount",
	}
}

func ErrAnotherTransaction() *Error {
	return &Error{
		Code: CodeOrderNotFound,
		Message: Message{
			RU: "По этому заказу выполняется другая транзакция",
			UZ: "Bu buyurtma bo'yicha boshqa tranzaksiya bajarilmoqda",
			EN: "Other transaction for this order is in progress",
		},
		Data: "order",
	}
}

func ErrTransactionID() *Error {
	return &Error{
		Code: CodeTransactionID,
		Message: Message{
			RU: "Неверный номер транзакции",
			UZ: "Tranzaksiya raqami noto'g'ri",
			EN: "Transaction number is wrong",
		},
		Data: "id",
	}
}

func ErrCancelledTransaction() *Error {
	return &Error{
		Code: CodeUnknown,
		Message: Message{
			RU: "Транзакция отменена или возвращена",
			UZ: "Tranzaksiya bekor qilingan yoki qaytarilgan",
			EN: "Transaction was cancelled or refunded",
		},
		Data: "order",
	}
}

func ErrCannotCancel() *Error {
	return &Error{
		Code: CodeCannotCancel,
		Message: Message{
			RU: "Невозможно отменить. Заказ выполнен",
			UZ: "Bekor qilib bo'lmaydi. Buyurtma bajarilgan",
			EN: "It is impossible to cancel. The order is completed",
		},
		Data: "order",
	}
}

func ErrPassword() *Error {
	return &Error{
		Code: CodePassword,
		Message: Message{
			RU: "Невозможно сменить пароль",
			UZ: "Parolni o'zgartirib bo'lmaydi",
			EN: "Cannot change the password",
		},
		Data: "password",
	}
}

func ErrUnknown() *Error {
	return &Error{
		Code: CodeUnknown,
		Message: Message{
			RU: "Неизвестная ошибка",
			UZ: "Noma'lum xatolik",
			EN: "Unknown error",
		},
	}
}
