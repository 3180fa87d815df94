package http_api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fracta-city/fracta/internal/models"
)

// VerifyTokenResponse confirms a token is still accepted
type VerifyTokenResponse struct {
	Valid         bool   `json:"valid"`
	WalletAddress string `json:"wallet_address"`
	KYCStatus     string `json:"kyc_status"`
}

// pathID parses an integer path parameter, answering 400 when it is malformed.
func (s *HTTPServer) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		s.writeError(c, models.NewValidationError("invalid "+name))
		return 0, false
	}
	return id, true
}

// health reports database and chain connectivity.
func (s *HTTPServer) health(c *gin.Context) {
	status := s.fracta.Health(c.Request.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// nonce issues a login challenge for the wallet in the path.
func (s *HTTPServer) nonce(c *gin.Context) {
	challenge, err := s.fracta.LoginChallenge(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

func (s *HTTPServer) walletLogin(c *gin.Context) {
	var req models.WalletLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	res, err := s.fracta.WalletLogin(c.Request.Context(), &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *HTTPServer) verifyToken(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, VerifyTokenResponse{
		Valid:         true,
		WalletAddress: user.WalletAddress,
		KYCStatus:     user.KYCStatus,
	})
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.fracta.Logout(c.Request.Context(), c.GetString(tokenContextKey)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// chainProperty serves the pilot property with its mirrored sale state.
func (s *HTTPServer) chainProperty(c *gin.Context) {
	property, err := s.fracta.ChainProperty(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (s *HTTPServer) networkStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.fracta.NetworkStatus(c.Request.Context()))
}

func (s *HTTPServer) chainBalance(c *gin.Context) {
	balance, err := s.fracta.ChainBalance(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}
