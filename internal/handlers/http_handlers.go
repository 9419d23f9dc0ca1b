package handlers

import (
	"context"
	"errors"
	"net/http"

	"wallet_api/internal/models"
	"wallet_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=http_handlers.go -destination=../../test/mock_wallet_service.go -package=test WalletService

type WalletService interface {
	CreateWallet(ctx context.Context) (models.Wallet, error)
	GetBalance(ctx context.Context, walletID string) (models.Wallet, error)
	ApplyOperation(ctx context.Context, walletID string, opType models.OperationType, amount decimal.Decimal) (models.OperationResult, error)
}

type WalletHTTPHandler struct {
	service WalletService
}

func NewWalletHTTPHandler(service WalletService) *WalletHTTPHandler {
	registerValidators()
	return &WalletHTTPHandler{service: service}
}

func (h *WalletHTTPHandler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/wallets", h.HandleCreateWallet)
		v1.GET("/wallets/:wallet_id", h.HandleGetBalance)
		v1.POST("/wallets/:wallet_id/operation", h.HandleWalletOperation)
	}
}

func (h *WalletHTTPHandler) HandleCreateWallet(c *gin.Context) {
	wallet, err := h.service.CreateWallet(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Detail: "failed to create wallet"})
		return
	}
	c.JSON(http.StatusOK, models.NewWalletResponse(wallet))
}

func (h *WalletHTTPHandler) HandleGetBalance(c *gin.Context) {
	wallet, err := h.service.GetBalance(c.Request.Context(), c.Param("wallet_id"))
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Detail: "failed to read wallet"})
		return
	}
	c.JSON(http.StatusOK, models.NewWalletResponse(wallet))
}

func (h *WalletHTTPHandler) HandleWalletOperation(c *gin.Context) {
	var req models.OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: "invalid request: " + err.Error()})
		return
	}

	result, err := h.service.ApplyOperation(c.Request.Context(), c.Param("wallet_id"), req.OperationType, req.Amount)
	if err != nil {
		status, body := operationError(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, models.NewOperationResponse(result))
}

func operationError(err error) (int, models.ErrorResponse) {
	var insufficient *service.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, models.ErrorResponse{
			Detail:          service.ErrInsufficientFunds.Error(),
			CurrentBalance:  models.FormatMoney(insufficient.Balance),
			RequestedAmount: models.FormatMoney(insufficient.Amount),
		}
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidOperation):
		return http.StatusUnprocessableEntity, models.ErrorResponse{Detail: err.Error()}
	case errors.Is(err, service.ErrOperationFailed):
		// the wrapped store error stays in the logs
		return http.StatusBadRequest, models.ErrorResponse{Detail: service.ErrOperationFailed.Error()}
	case errors.Is(err, service.ErrInvalidWallet),
		errors.Is(err, service.ErrWalletNotFound),
		errors.Is(err, service.ErrConcurrentModification),
		errors.Is(err, service.ErrMaxRetriesExceeded):
		return http.StatusBadRequest, models.ErrorResponse{Detail: err.Error()}
	}
	return http.StatusServiceUnavailable, models.ErrorResponse{Detail: "operation unavailable"}
}
