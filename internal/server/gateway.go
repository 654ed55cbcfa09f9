package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
)

func (s *Server) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hello": "world"})
}

// WebhookCallback acknowledges unconditionally. Verification is handed
// off strictly after the response is written and can never change it.
// POST /webhook
func (s *Server) WebhookCallback(c *gin.Context) {
	signature := c.GetHeader("verif-hash")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		body = nil
	}

	c.JSON(http.StatusOK, gin.H{"status": "Success"})
	s.gateway.AcknowledgeWebhook(signature, body)
}

// VerifyPayment
// GET /verify-payment/:identifier?amount=&txref=&amount_only=
func (s *Server) VerifyPayment(c *gin.Context) {
	in := domain.VerifyPaymentInput{
		Reference:  c.Query("txref"),
		Amount:     c.Query("amount"),
		AmountOnly: strings.EqualFold(strings.TrimSpace(c.Query("amount_only")), "true"),
	}

	result, err := s.gateway.VerifyPayment(c.Request.Context(), c.Param("identifier"), in)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if !result.Status {
		c.JSON(http.StatusOK, gin.H{"status": false, "msg": result.Message})
		return
	}
	if result.Data == nil {
		c.JSON(http.StatusOK, gin.H{"status": true, "msg": result.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "msg": result.Message, "data": result.Data})
}

type generateAccountRequest struct {
	AccountName string `json:"account_name"`
	ClientEmail string `json:"client_email"`
	Permanent   bool   `json:"permanent"`
}

// GenerateAccountNumber
// POST /generate-account-no/:identifier
func (s *Server) GenerateAccountNumber(c *gin.Context) {
	var req generateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "invalid request body"})
		return
	}

	result, err := s.gateway.CreateAccount(c.Request.Context(), c.Param("identifier"), domain.CreateAccountInput{
		AccountName: req.AccountName,
		ClientEmail: req.ClientEmail,
		Permanent:   req.Permanent,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if !result.Status {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": result.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "msg": result.Message, "data": result.Data})
}

type buildPaymentInfoRequest struct {
	Amount        any            `json:"amount"`
	Currency      string         `json:"currency"`
	Order         any            `json:"order"`
	User          map[string]any `json:"user"`
	ProcessorInfo map[string]any `json:"processor_info"`
}

// BuildPaymentInfo
// POST /build-payment-info/:identifier
func (s *Server) BuildPaymentInfo(c *gin.Context) {
	var req buildPaymentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "invalid request body"})
		return
	}

	result, err := s.gateway.BuildPaymentObject(c.Request.Context(), c.Param("identifier"), domain.PaymentObjectInput{
		Amount:        asString(req.Amount),
		OrderID:       asString(req.Order),
		Currency:      req.Currency,
		User:          req.User,
		ProcessorInfo: req.ProcessorInfo,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "data": result.Data})
}

// asString normalizes JSON body values that may arrive as strings or
// numbers.
func asString(v any) string {
	switch cast := v.(type) {
	case string:
		return cast
	case float64:
		return strconv.FormatFloat(cast, 'f', -1, 64)
	case int:
		return strconv.Itoa(cast)
	case nil:
		return ""
	default:
		return ""
	}
}
