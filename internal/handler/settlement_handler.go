package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"vestra/internal/middleware"
	"vestra/internal/models"
	"vestra/internal/repository"
	"vestra/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Executor interface {
	Execute(ctx context.Context, cmd settlement.Command) (*settlement.Result, error)
}

// SettlementHandler exposes engine commands to back-office operators.
type SettlementHandler struct {
	engine    Executor
	auditRepo *repository.AuditLogRepository
}

func NewSettlementHandler(engine Executor, auditRepo *repository.AuditLogRepository) *SettlementHandler {
	return &SettlementHandler{engine: engine, auditRepo: auditRepo}
}

type CreditRoiRequest struct {
	UserID uint            `json:"user_id" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type InvestmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *SettlementHandler) ApproveDeposit(c *gin.Context) {
	h.onTransaction(c, "approve_deposit", func(id, operator uint) settlement.Command {
		return settlement.ApproveDeposit{TransactionID: id, ApproverID: operator}
	})
}

func (h *SettlementHandler) RejectDeposit(c *gin.Context) {
	h.onTransaction(c, "reject_deposit", func(id, operator uint) settlement.Command {
		return settlement.RejectDeposit{TransactionID: id, ApproverID: operator}
	})
}

func (h *SettlementHandler) ApproveWithdrawal(c *gin.Context) {
	h.onTransaction(c, "approve_withdrawal", func(id, operator uint) settlement.Command {
		return settlement.ApproveWithdrawal{TransactionID: id, ApproverID: operator}
	})
}

func (h *SettlementHandler) RejectWithdrawal(c *gin.Context) {
	h.onTransaction(c, "reject_withdrawal", func(id, operator uint) settlement.Command {
		return settlement.RejectWithdrawal{TransactionID: id, ApproverID: operator}
	})
}

func (h *SettlementHandler) MarkWithdrawalPaid(c *gin.Context) {
	h.onTransaction(c, "mark_withdrawal_paid", func(id, operator uint) settlement.Command {
		return settlement.MarkWithdrawalPaid{TransactionID: id, ApproverID: operator}
	})
}

// CreditRoi credits interest on behalf of an operator.
func (h *SettlementHandler) CreditRoi(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CreditRoiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	operator := middleware.GetUserID(c)
	cmd := settlement.CreditRoi{
		InvestmentID: id,
		UserID:       req.UserID,
		Amount:       req.Amount,
		ApproverID:   &operator,
	}
	h.run(c, "credit_roi", "investment", id, cmd)
}

func (h *SettlementHandler) UpdateInvestmentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req InvestmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := settlement.UpdateInvestmentStatus{
		InvestmentID: id,
		Status:       strings.ToUpper(req.Status),
		ApproverID:   middleware.GetUserID(c),
	}
	h.run(c, "update_investment_status", "investment", id, cmd)
}

// AuditTrail lists audit rows for ?resource=&resource_id=.
func (h *SettlementHandler) AuditTrail(c *gin.Context) {
	resource := c.Query("resource")
	resourceID := c.Query("resource_id")
	if resource == "" || resourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource and resource_id are required"})
		return
	}
	list, err := h.auditRepo.ListByResource(resource, resourceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit trail"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}

func (h *SettlementHandler) onTransaction(c *gin.Context, action string, build func(id, operator uint) settlement.Command) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.run(c, action, "transaction", id, build(id, middleware.GetUserID(c)))
}

func (h *SettlementHandler) run(c *gin.Context, action, resource string, id uint, cmd settlement.Command) {
	res, err := h.engine.Execute(c.Request.Context(), cmd)
	outcome := "applied"
	if err != nil {
		_, outcome = classify(err)
	}
	h.auditLog(c, action, resource, id, outcome)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SettlementHandler) auditLog(c *gin.Context, action, resource string, id uint, outcome string) {
	if h.auditRepo == nil {
		return
	}
	operator := middleware.GetUserID(c)
	err := h.auditRepo.Create(&models.AuditLog{
		UserID:     &operator,
		Action:     action,
		Resource:   resource,
		ResourceID: strconv.FormatUint(uint64(id), 10),
		Outcome:    outcome,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		slog.Warn("audit log write failed", "action", action, "resource", resource, "resource_id", id, "outcome", outcome, "error", err)
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
