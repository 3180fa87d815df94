package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PurchaseRequest buys token_amount tokens of a property
type PurchaseRequest struct {
	PropertyID  int64 `json:"property_id" binding:"required"`
	TokenAmount int64 `json:"token_amount"`
}

// MintRequest mints the next numbered token of a property
type MintRequest struct {
	PropertyID int64 `json:"property_id" binding:"required"`
}

func (s *HTTPServer) purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	res, err := s.fracta.Purchase(c.Request.Context(), currentUser(c).ID, req.PropertyID, req.TokenAmount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *HTTPServer) mintToken(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	token, err := s.fracta.MintToken(c.Request.Context(), currentUser(c).ID, req.PropertyID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

func (s *HTTPServer) propertyTokens(c *gin.Context) {
	id, ok := s.pathID(c, "property_id")
	if !ok {
		return
	}
	tokens, err := s.fracta.PropertyTokens(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// transactionStatus looks up one of the caller's purchases by reference.
func (s *HTTPServer) transactionStatus(c *gin.Context) {
	status, err := s.fracta.TransactionStatus(c.Request.Context(), currentUser(c).ID, c.Param("hash"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *HTTPServer) userTransactions(c *gin.Context) {
	txs, err := s.fracta.UserTransactions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (s *HTTPServer) portfolio(c *gin.Context) {
	portfolio, err := s.fracta.Portfolio(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolio)
}
