package client

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"payme-click-gateway/internal/config"
)

// ClickClient covers the two outbound Click merchant API calls: invoice
// creation and fiscal item submission. Both are fire-and-report; the caller
// never retries them within a callback.
type ClickClient interface {
	CreateInvoice(ctx context.Context, merchantTransID string, amount float64, phoneNumber string) (*InvoiceResponse, error)
	SubmitFiscalItems(ctx context.Context, paymentID string, items []FiscalItem, receivedECash float64) (*FiscalResponse, error)
}

type clickClientImpl struct {
	httpClient     *http.Client
	baseApiURL     string
	serviceID      int
	merchantUserID string
	secretKey      string
}

type InvoiceResponse struct {
	ErrorCode int    `json:"error_code"`
	ErrorNote string `json:"error_note"`
	InvoiceID int64  `json:"invoice_id"`
}

type FiscalItem struct {
	Name       string `json:"Name"`
	SPIC       string `json:"SPIC"`
	Units      int    `json:"Units"`
	Price      int64  `json:"Price"`
	Amount     int    `json:"Amount"`
	VAT        int64  `json:"VAT"`
	VATPercent int    `json:"VATPercent"`
}

type FiscalResponse struct {
	ErrorCode int    `json:"error_code"`
	ErrorNote string `json:"error_note"`
	Raw       string `json:"raw,omitempty"`
}

func NewClickClient(clickCfg *config.Click) ClickClient {
	return &clickClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:     clickCfg.BaseApiURL,
		serviceID:      clickCfg.ServiceID,
		merchantUserID: clickCfg.MerchantUserID,
		secretKey:      clickCfg.SecretKey,
	}
}

// authHeader builds the Click Auth header: user id, sha1(timestamp+secret)
// and the timestamp itself, colon separated.
func (c *clickClientImpl) authHeader() string {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	sum := sha1.Sum([]byte(timestamp + c.secretKey))
	return fmt.Sprintf("%s:%s:%s", c.merchantUserID, hex.EncodeToString(sum[:]), timestamp)
}

func (c *clickClientImpl) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Auth", c.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("click error %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode click response: %w", err)
	}
	return nil
}

func (c *clickClientImpl) CreateInvoice(ctx context.Context, merchantTransID string, amount float64, phoneNumber string) (*InvoiceResponse, error) {
	payload := map[string]interface{}{
		"service_id":        c.serviceID,
		"amount":            amount,
		"phone_number":      phoneNumber,
		"merchant_trans_id": merchantTransID,
	}

	var result InvoiceResponse
	if err := c.post(ctx, "/merchant/invoice/create", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *clickClientImpl) SubmitFiscalItems(ctx context.Context, paymentID string, items []FiscalItem, receivedECash float64) (*FiscalResponse, error) {
	payload := map[string]interface{}{
		"service_id":     c.serviceID,
		"payment_id":     paymentID,
		"items":          items,
		"received_ecash": receivedECash,
		"received_cash":  0,
		"received_card":  0,
	}

	var result FiscalResponse
	if err := c.post(ctx, "/merchant/payment/ofd_data/submit_items", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NewFiscalItem builds one OFD receipt line. Price is per unit in tiyin;
// VAT is carved out of the total at 12%.
func NewFiscalItem(name string, quantity int, unitPrice int64) FiscalItem {
	total := unitPrice * int64(quantity)
	vat := total * 12 / 112
	return FiscalItem{
		Name:       name,
		Units:      1,
		Price:      unitPrice,
		Amount:     quantity,
		VAT:        vat,
		VATPercent: 12,
	}
}
