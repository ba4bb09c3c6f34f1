package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/amadorcf/YourBank-account-service/shared/cqrs"
	"github.com/amadorcf/YourBank-account-service/shared/middleware"
	"github.com/amadorcf/YourBank-account-service/shared/models"
	"github.com/amadorcf/YourBank-account-service/shared/utils"
	"github.com/gin-gonic/gin"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Response, error)
	UpdateStatus(context.Context, cqrs.UpdateAccountStatusCommand) (*models.Response, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.Response, error)
	CloseAccount(context.Context, cqrs.CloseAccountCommand) (*models.Response, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	ReadAccountByAccountNumber(context.Context, cqrs.GetAccountQuery) (*models.AccountData, error)
	GetBalance(context.Context, cqrs.GetBalanceQuery) (string, error)
	ReadAccountByUserID(context.Context, cqrs.GetAccountByUserQuery) (*models.AccountData, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

type CreateAccountRequest struct {
	UserID      int64  `json:"userId" validate:"gt=0"`
	AccountType string `json:"accountType" validate:"required,oneof=SAVINGS CURRENT"`
}

type UpdateStatusRequest struct {
	AccountStatus string `json:"accountStatus" validate:"required,oneof=PENDING ACTIVE BLOCKED CLOSED"`
}

type BalanceResponse struct {
	AccountNumber    string `json:"accountNumber"`
	AvailableBalance string `json:"availableBalance"`
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

// RegisterRoutes mounts the account routes on r.
func (h *AccountHandler) RegisterRoutes(r gin.IRouter) {
	accounts := r.Group("/v1/accounts")
	accounts.POST("", h.CreateAccount)
	accounts.GET("/:accountNumber", h.GetAccount)
	accounts.PUT("/:accountNumber", h.UpdateAccount)
	accounts.PATCH("/:accountNumber/status", h.UpdateStatus)
	accounts.GET("/:accountNumber/balance", h.GetBalance)
	accounts.PUT("/:accountNumber/close", h.CloseAccount)

	r.GET("/v1/users/:userId/account", h.GetAccountByUser)
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	resp, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		UserID:      req.UserID,
		AccountType: req.AccountType,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	status, err := models.ParseAccountStatus(req.AccountStatus)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.commands.UpdateStatus(c.Request.Context(), cqrs.UpdateAccountStatusCommand{
		AccountNumber: accountNumber,
		Status:        status,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	data, err := h.queries.ReadAccountByAccountNumber(c.Request.Context(), cqrs.GetAccountQuery{AccountNumber: accountNumber})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// UpdateAccount takes the full account shape as its body; fields are applied as sent.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	var data models.AccountData
	if err := c.ShouldBindJSON(&data); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{
		AccountNumber: accountNumber,
		Data:          data,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	balance, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetBalanceQuery{AccountNumber: accountNumber})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{AccountNumber: accountNumber, AvailableBalance: balance})
}

func (h *AccountHandler) CloseAccount(c *gin.Context) {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return
	}

	resp, err := h.commands.CloseAccount(c.Request.Context(), cqrs.CloseAccountCommand{AccountNumber: accountNumber})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) GetAccountByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	data, err := h.queries.ReadAccountByUserID(c.Request.Context(), cqrs.GetAccountByUserQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

func accountNumberParam(c *gin.Context) (string, bool) {
	accountNumber := c.Param("accountNumber")
	if !utils.ValidateAccountNumber(accountNumber) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account number")
		return "", false
	}
	return accountNumber, true
}
