package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"payme-click-gateway/internal/dto"
	"payme-click-gateway/internal/service"
)

// ClickHandler serves the Click SHOP-API callbacks. Prepare and complete
// arrive form-encoded; create_invoice is called by our own bot with JSON.
type ClickHandler struct {
	clickService service.ClickService
	logger       *zap.SugaredLogger
}

func NewClickHandler(clickService service.ClickService, logger *zap.SugaredLogger) *ClickHandler {
	return &ClickHandler{clickService: clickService, logger: logger}
}

func (h *ClickHandler) CreateInvoice(c echo.Context) error {
	var req dto.CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ClickError{Error: service.ClickErrMissingField, ErrorNote: "invalid request body"})
	}

	invoice, clickErr := h.clickService.CreateInvoice(c.Request().Context(), req)
	if clickErr != nil {
		if clickErr.Error == service.ClickErrMissingField {
			return c.JSON(http.StatusBadRequest, clickErr)
		}
		// Click expects 200 even for upstream invoice failures.
		return c.JSON(http.StatusOK, clickErr)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *ClickHandler) Prepare(c echo.Context) error {
	clickTransID := c.FormValue("click_trans_id")
	merchantTransID := c.FormValue("merchant_trans_id")
	amount := c.FormValue("amount")
	if clickTransID == "" || merchantTransID == "" || amount == "" {
		return c.JSON(http.StatusBadRequest, dto.ClickError{Error: service.ClickErrMissingField, ErrorNote: "missing click_trans_id, merchant_trans_id or amount"})
	}

	resp, clickErr := h.clickService.Prepare(c.Request().Context(), clickTransID, merchantTransID)
	if clickErr != nil {
		return c.JSON(http.StatusBadRequest, clickErr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ClickHandler) Complete(c echo.Context) error {
	clickTransID := c.FormValue("click_trans_id")
	merchantTransID := c.FormValue("merchant_trans_id")
	merchantPrepareID := c.FormValue("merchant_prepare_id")
	amountStr := c.FormValue("amount")
	if clickTransID == "" || merchantTransID == "" || merchantPrepareID == "" || amountStr == "" {
		return c.JSON(http.StatusBadRequest, dto.ClickError{Error: service.ClickErrMissingField, ErrorNote: "missing click_trans_id, merchant_trans_id, merchant_prepare_id or amount"})
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ClickError{Error: service.ClickErrMissingField, ErrorNote: "invalid amount"})
	}

	quantity := 0
	if q := c.FormValue("quantity"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.ClickError{Error: service.ClickErrMissingField, ErrorNote: "invalid quantity"})
		}
	}

	resp, clickErr := h.clickService.Complete(c.Request().Context(), service.CompleteRequest{
		ClickTransID:      clickTransID,
		MerchantTransID:   merchantTransID,
		MerchantPrepareID: merchantPrepareID,
		Amount:            amount,
		Quantity:          quantity,
	})
	if clickErr != nil {
		status := http.StatusBadRequest
		if clickErr.Error == service.ClickErrNotFound {
			status = http.StatusNotFound
		}
		return c.JSON(status, clickErr)
	}
	return c.JSON(http.StatusOK, resp)
}
