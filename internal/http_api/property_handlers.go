package http_api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fracta-city/fracta/internal/models"
)

// PropertyResponse is a property with its derived sale figures
type PropertyResponse struct {
	*models.Property
	TokensRemaining   int64           `json:"tokens_remaining"`
	FundingPercentage decimal.Decimal `json:"funding_percentage"`
	IsFullyFunded     bool            `json:"is_fully_funded"`
	MinimumInvestment decimal.Decimal `json:"minimum_investment"`
}

// PropertyListResponse is one page of properties
type PropertyListResponse struct {
	Properties []PropertyResponse `json:"properties"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	HasNext    bool               `json:"has_next"`
}

func newPropertyResponse(p *models.Property) PropertyResponse {
	return PropertyResponse{
		Property:          p,
		TokensRemaining:   p.TokensRemaining(),
		FundingPercentage: p.FundingPercentage(),
		IsFullyFunded:     p.IsFullyFunded(),
		MinimumInvestment: p.MinimumInvestment(),
	}
}

func newPropertyResponses(items []*models.Property) []PropertyResponse {
	out := make([]PropertyResponse, len(items))
	for i, p := range items {
		out[i] = newPropertyResponse(p)
	}
	return out
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(name + " must be an integer")
	}
	return v, nil
}

func (s *HTTPServer) listProperties(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		s.writeError(c, err)
		return
	}
	size, err := queryInt(c, "size", 20)
	if err != nil {
		s.writeError(c, err)
		return
	}
	filter := models.PropertyFilter{
		Jurisdiction: c.Query("jurisdiction"),
		Status:       c.Query("status"),
		Search:       c.Query("search"),
		Page:         page,
		Size:         size,
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(c, models.NewValidationError("featured must be true or false"))
			return
		}
		filter.Featured = &featured
	}

	result, err := s.fracta.ListProperties(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PropertyListResponse{
		Properties: newPropertyResponses(result.Items),
		Total:      result.Total,
		Page:       result.Page,
		Size:       result.Size,
		HasNext:    result.HasNext,
	})
}

func (s *HTTPServer) featuredProperties(c *gin.Context) {
	items, err := s.fracta.FeaturedProperties(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponses(items))
}

func (s *HTTPServer) getProperty(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	p, err := s.fracta.GetProperty(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

// canInvest runs the eligibility check for ?amount= tokens (default 1).
func (s *HTTPServer) canInvest(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	amount, err := queryInt(c, "amount", 1)
	if err != nil {
		s.writeError(c, err)
		return
	}
	report, err := s.fracta.CheckEligibility(c.Request.Context(), currentUser(c).ID, id, int64(amount))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *HTTPServer) createProperty(c *gin.Context) {
	var req models.PropertyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	p, err := s.fracta.CreateProperty(c.Request.Context(), &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info("Property created by admin", "property_id", p.ID, "admin", currentUser(c).WalletAddress)
	c.JSON(http.StatusCreated, newPropertyResponse(p))
}

func (s *HTTPServer) updateProperty(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	var req models.PropertyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	p, err := s.fracta.UpdateProperty(c.Request.Context(), id, &req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}
