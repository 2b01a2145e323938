package handler

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"payme-click-gateway/internal/dto"
	"payme-click-gateway/internal/protocol"
	"payme-click-gateway/internal/secret"
	"payme-click-gateway/internal/service"
)

// PaymeHandler dispatches the single Payme JSON-RPC callback endpoint.
// Every outcome, including malformed envelopes and failed authorization,
// rides back as HTTP 200 with a protocol-shaped body.
type PaymeHandler struct {
	paymeService service.PaymeService
	secrets      *secret.Store
	login        string
	logger       *zap.SugaredLogger
}

func NewPaymeHandler(paymeService service.PaymeService, secrets *secret.Store, login string, logger *zap.SugaredLogger) *PaymeHandler {
	return &PaymeHandler{
		paymeService: paymeService,
		secrets:      secrets,
		login:        login,
		logger:       logger,
	}
}

func (h *PaymeHandler) authorized(header string) bool {
	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte(h.login+":"+h.secrets.Current()))
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(header)), []byte(expected)) == 1
}

func (h *PaymeHandler) Callback(c echo.Context) error {
	var req protocol.Request
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil || !req.Valid() {
		// The envelope never parsed, so no request id to correlate with.
		h.logger.Errorw("invalid callback envelope", zap.Error(err))
		return c.JSON(http.StatusOK, protocol.Fail(0, protocol.ErrInvalidJSON()))
	}
	reqID := req.ID

	if !h.authorized(c.Request().Header.Get("Authorization")) {
		h.logger.Warnw("authorization failed", "req_id", string(reqID), "method", req.Method)
		return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrUnauthorized()))
	}

	h.logger.Infow("payme callback", "method", req.Method, "req_id", string(reqID))

	ctx := c.Request().Context()
	switch req.Method {
	case "CheckPerformTransaction":
		var p dto.CheckPerformParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrInvalidJSON()))
		}
		res, rpcErr := h.paymeService.CheckPerform(ctx, p)
		return respond(c, reqID, res, rpcErr)

	case "CreateTransaction":
		var p dto.CreateTransactionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrInvalidJSON()))
		}
		res, rpcErr := h.paymeService.CreateTransaction(ctx, p)
		return respond(c, reqID, res, rpcErr)

	case "PerformTransaction":
		var p dto.PerformTransactionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrInvalidJSON()))
		}
		res, rpcErr := h.paymeService.PerformTransaction(ctx, p)
		return respond(c, reqID, res, rpcErr)

	case "CheckTransaction":
		var p dto.CheckTransactionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrInvalidJSON()))
		}
		res, rpcErr := h.paymeService.CheckTransaction(ctx, p)
		return respond(c, reqID, res, rpcErr)

	case "CancelTransaction":
		var p dto.CancelTransactionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrInvalidJSON()))
		}
		res, rpcErr := h.paymeService.CancelTransaction(ctx, p)
		return respond(c, reqID, res, rpcErr)

	case "ChangePassword":
		var p dto.ChangePasswordParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrInvalidJSON()))
		}
		res, rpcErr := h.paymeService.ChangePassword(ctx, p)
		return respond(c, reqID, res, rpcErr)

	default:
		h.logger.Warnw("unknown method", "method", req.Method, "req_id", string(reqID))
		return c.JSON(http.StatusOK, protocol.Fail(reqID, protocol.ErrUnknownMethod(req.Method)))
	}
}

func respond[T any](c echo.Context, id json.RawMessage, result *T, rpcErr *protocol.Error) error {
	if rpcErr != nil {
		return c.JSON(http.StatusOK, protocol.Fail(id, rpcErr))
	}
	return c.JSON(http.StatusOK, protocol.OK(id, result))
}
