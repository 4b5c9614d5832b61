// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/card-bank/internal/domain"
	"github.com/go-petr/card-bank/internal/middleware"
	"github.com/go-petr/card-bank/pkg/errorspkg"
	"github.com/go-petr/card-bank/pkg/tokenpkg"
	"github.com/go-petr/card-bank/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Deposit(ctx context.Context, cardNumber, amount string) (domain.TransactionTxResult, error)
	Withdraw(ctx context.Context, cardNumber, cvv, amount string) (domain.TransactionTxResult, error)
	List(ctx context.Context, owner, cardNumber string, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type movementData struct {
	ID      int64  `json:"id"`
	Amount  string `json:"amount"`
	Balance string `json:"balance"`
}

type movementResponse struct {
	Data movementData `json:"data,omitempty"`
}

func newMovementResponse(result domain.TransactionTxResult) movementResponse {
	return movementResponse{
		Data: movementData{
			ID:      result.Transaction.ID,
			Amount:  result.Transaction.Amount,
			Balance: result.Account.Balance,
		},
	}
}

type depositRequest struct {
	CardNumber string `json:"card_number" binding:"required,len=16,numeric"`
	Amount     string `json:"amount" binding:"required"`
}

// Deposit handles http request to deposit money onto a card.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req depositRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	result, err := h.service.Deposit(ctx, req.CardNumber, req.Amount)
	if err != nil {
		handleMovementError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, newMovementResponse(result))
}

type withdrawRequest struct {
	CardNumber string `json:"card_number" binding:"required,len=16,numeric"`
	CVV        string `json:"cvv" binding:"required,len=3,numeric"`
	Amount     string `json:"amount" binding:"required"`
}

// Withdraw handles http request to withdraw money from a card.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req withdrawRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	result, err := h.service.Withdraw(ctx, req.CardNumber, req.CVV, req.Amount)
	if err != nil {
		handleMovementError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, newMovementResponse(result))
}

func handleMovementError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrInvalidAmount:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrInsufficientBalance:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrBadCredentials:
		gctx.JSON(http.StatusUnauthorized, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type listRequest struct {
	CardNumber string `form:"card_number" binding:"required,len=16,numeric"`
	PageID     int32  `form:"page_id" binding:"required,min=1"`
	PageSize   int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to list transactions of the authenticated user's account.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	transactions, err := h.service.List(ctx, authPayload.Email, req.CardNumber, req.PageSize, req.PageID)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case domain.ErrAccountOwnerMismatch:
			gctx.JSON(http.StatusForbidden, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	res := responseTransactions{
		Data: dataTransactions{transactions},
	}

	gctx.JSON(http.StatusOK, res)
}
