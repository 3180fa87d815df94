package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fracta-city/fracta/internal/models"
)

// KYCSubmissionResponse acknowledges a submission awaiting review
type KYCSubmissionResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Record  *models.KYCRecord `json:"kyc_record"`
}

// RejectRequest carries the reason shown to the investor
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (s *HTTPServer) kycStatus(c *gin.Context) {
	summary, err := s.fracta.KYCStatus(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *HTTPServer) kycRecords(c *gin.Context) {
	records, err := s.fracta.KYCRecords(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *HTTPServer) submitProsperaKYC(c *gin.Context) {
	var req models.ProsperaKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	record, err := s.fracta.SubmitProsperaKYC(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, KYCSubmissionResponse{
		Success: true,
		Message: "Prospera permit submitted for verification",
		Record:  record,
	})
}

func (s *HTTPServer) submitInternationalKYC(c *gin.Context) {
	var req models.InternationalKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	record, err := s.fracta.SubmitInternationalKYC(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, KYCSubmissionResponse{
		Success: true,
		Message: "International KYC submitted for verification",
		Record:  record,
	})
}

func (s *HTTPServer) pendingKYC(c *gin.Context) {
	records, err := s.fracta.PendingKYC(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// adminKYCRecords lists records filtered by ?status= and ?jurisdiction=.
func (s *HTTPServer) adminKYCRecords(c *gin.Context) {
	records, err := s.fracta.AdminKYCRecords(c.Request.Context(), c.Query("status"), c.Query("jurisdiction"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *HTTPServer) adminKYCRecord(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	record, err := s.fracta.KYCRecord(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *HTTPServer) approveKYC(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	record, err := s.fracta.ApproveKYC(c.Request.Context(), id, currentUser(c).WalletAddress)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *HTTPServer) rejectKYC(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	record, err := s.fracta.RejectKYC(c.Request.Context(), id, currentUser(c).WalletAddress, req.Reason)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
