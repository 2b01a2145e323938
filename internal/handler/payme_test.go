package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"payme-click-gateway/internal/lock"
	"payme-click-gateway/internal/model"
	"payme-click-gateway/internal/protocol"
	"payme-click-gateway/internal/secret"
	"payme-click-gateway/internal/service"
)

type fakeOrderRepo struct {
	m map[string]*model.Order
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	r.m[order.OrderID] = order
	return nil
}

func (r *fakeOrderRepo) FindByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	o, ok := r.m[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByMerchantTransID(_ context.Context, merchantTransID string) (*model.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) AttachTransaction(_ context.Context, orderID, transactionID string, createTime int64) (bool, error) {
	o, ok := r.m[orderID]
	if !ok || o.Status != model.StatusNew {
		return false, nil
	}
	o.Status = model.StatusProcessing
	o.TransactionID = transactionID
	o.CreateTime = createTime
	return true, nil
}

func (r *fakeOrderRepo) MarkPerformed(_ context.Context, orderID string, performTime int64) (bool, error) {
	return false, nil
}

func (r *fakeOrderRepo) MarkCancelled(_ context.Context, orderID string, fromStatuses []string, toStatus string, cancelTime int64, reason *int) (bool, error) {
	return false, nil
}

func (r *fakeOrderRepo) PrepareByMerchantTransID(_ context.Context, merchantTransID, clickTransID string) (*model.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) MarkPaid(_ context.Context, merchantTransID string) (bool, error) {
	return false, nil
}

func (r *fakeOrderRepo) MarkCompleted(_ context.Context, merchantTransID string) (bool, error) {
	return false, nil
}

func newTestHandler() (*PaymeHandler, *fakeOrderRepo) {
	repo := &fakeOrderRepo{m: map[string]*model.Order{}}
	secrets := secret.NewStore("merchant-key")
	logger := zap.NewNop().Sugar()
	svc := service.NewPaymeService(repo, lock.NewKeyed(), secrets, logger)
	return NewPaymeHandler(svc, secrets, "Paycom", logger), repo
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *protocol.Error `json:"error"`
	ID     json.RawMessage `json:"id"`
}

func callbackResponse(t *testing.T, h *PaymeHandler, body, authHeader string) *rpcResponse {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/payme-api/payme/callback", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	if err := h.Callback(e.NewContext(req, rec)); err != nil {
		t.Fatalf("callback returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp rpcResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return &resp
}

func basicAuth() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte("Paycom:merchant-key"))
}

func TestCallbackRejectsMalformedEnvelope(t *testing.T) {
	h, _ := newTestHandler()

	for name, body := range map[string]string{
		"not json":      "{nope",
		"missing field": `{"jsonrpc":"2.0","params":{},"id":7}`,
	} {
		resp := callbackResponse(t, h, body, basicAuth())
		if resp.Error == nil || resp.Error.Code != protocol.CodeParseError {
			t.Errorf("%s: want %d, got %+v", name, protocol.CodeParseError, resp.Error)
		}
		if string(resp.ID) != "0" {
			t.Errorf("%s: id = %s, want 0", name, resp.ID)
		}
	}
}

func TestCallbackRejectsBadCredentials(t *testing.T) {
	h, _ := newTestHandler()

	body := `{"jsonrpc":"2.0","method":"CheckTransaction","params":{"id":"T1","account":{"order_id":"A1"}},"id":7}`
	resp := callbackResponse(t, h, body, "Basic d3Jvbmc6d3Jvbmc=")
	if resp.Error == nil || resp.Error.Code != protocol.CodeUnauthorized {
		t.Errorf("want %d, got %+v", protocol.CodeUnauthorized, resp.Error)
	}
	if string(resp.ID) != "7" {
		t.Errorf("id = %s, want 7", resp.ID)
	}
}

func TestCallbackUnknownMethod(t *testing.T) {
	h, _ := newTestHandler()

	body := `{"jsonrpc":"2.0","method":"ExplodeTransaction","params":{},"id":9}`
	resp := callbackResponse(t, h, body, basicAuth())
	if resp.Error == nil || resp.Error.Code != protocol.CodeUnknownMethod {
		t.Fatalf("want %d, got %+v", protocol.CodeUnknownMethod, resp.Error)
	}
	if resp.Error.Data != "ExplodeTransaction" {
		t.Errorf("error data = %v, want the method name", resp.Error.Data)
	}
}

func TestCallbackDispatchesCreateTransaction(t *testing.T) {
	h, repo := newTestHandler()
	repo.m["A1"] = &model.Order{OrderID: "A1", Amount: 1000, Status: model.StatusNew}

	body := `{"jsonrpc":"2.0","method":"CreateTransaction","params":{"id":"T1","account":{"order_id":"A1"},"amount":1000},"id":11}`
	resp := callbackResponse(t, h, body, basicAuth())
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if string(resp.ID) != "11" {
		t.Errorf("id = %s, want 11", resp.ID)
	}

	var result struct {
		Transaction string `json:"transaction"`
		State       int    `json:"state"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.Transaction != "000A1" || result.State != model.StateCreated {
		t.Errorf("result: %+v", result)
	}
	if repo.m["A1"].Status != model.StatusProcessing {
		t.Errorf("order status = %q, want processing", repo.m["A1"].Status)
	}
}

func TestCallbackEchoesIDVerbatim(t *testing.T) {
	h, repo := newTestHandler()
	repo.m["A1"] = &model.Order{OrderID: "A1", Amount: 1000, Status: model.StatusNew}

	// The caller picks the id type; it comes back untouched whether it is a
	// string or a number, on success and on error alike.
	body := `{"jsonrpc":"2.0","method":"CheckPerformTransaction","params":{"account":{"order_id":"A1"},"amount":1000},"id":"req-abc"}`
	resp := callbackResponse(t, h, body, basicAuth())
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if string(resp.ID) != `"req-abc"` {
		t.Errorf("id = %s, want \"req-abc\"", resp.ID)
	}

	body = `{"jsonrpc":"2.0","method":"CheckPerformTransaction","params":{"account":{"order_id":"missing"},"amount":1000},"id":"req-def"}`
	resp = callbackResponse(t, h, body, basicAuth())
	if resp.Error == nil || resp.Error.Code != protocol.CodeOrderNotFound {
		t.Fatalf("want %d, got %+v", protocol.CodeOrderNotFound, resp.Error)
	}
	if string(resp.ID) != `"req-def"` {
		t.Errorf("error id = %s, want \"req-def\"", resp.ID)
	}
}

func TestCallbackAuthFollowsRotation(t *testing.T) {
	h, _ := newTestHandler()

	body := `{"jsonrpc":"2.0","method":"ChangePassword","params":{"password":"rotated-key"},"id":3}`
	resp := callbackResponse(t, h, body, basicAuth())
	if resp.Error != nil {
		t.Fatalf("rotation failed: %+v", resp.Error)
	}

	// The old credential is dead, the new one works.
	probe := `{"jsonrpc":"2.0","method":"CheckTransaction","params":{"id":"T1","account":{"order_id":"A1"}},"id":4}`
	resp = callbackResponse(t, h, probe, basicAuth())
	if resp.Error == nil || resp.Error.Code != protocol.CodeUnauthorized {
		t.Errorf("old credential still accepted: %+v", resp.Error)
	}

	rotated := "Basic " + base64.StdEncoding.EncodeToString([]byte("Paycom:rotated-key"))
	resp = callbackResponse(t, h, probe, rotated)
	if resp.Error != nil && resp.Error.Code == protocol.CodeUnauthorized {
		t.Errorf("new credential rejected: %+v", resp.Error)
	}
}
