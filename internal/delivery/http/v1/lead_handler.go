package v1

import (
	"net/http"

	"go-restaurant-onboarding/internal/delivery/http/response"
	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadUC domain.LeadUsecase
}

// NewLeadHandler registers the wizard lead routes (public, no auth required)
func NewLeadHandler(public *gin.RouterGroup, leadUC domain.LeadUsecase) {
	handler := &LeadHandler{leadUC: leadUC}

	leads := public.Group("/leads")
	{
		leads.POST("", handler.UpsertLead)
		leads.GET("/status", handler.GetStatus)
	}
}

// UpsertLead godoc
// @Summary      Submit a wizard step
// @Description  Create or update the Lead for an email with one incremental wizard submission. Sections that are absent from the payload stay untouched; sections present but empty are cleared.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LeadUpsertRequest  true  "Wizard step data"
// @Success      200      {object}  response.Response{data=domain.LeadUpsertResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /leads [post]
func (h *LeadHandler) UpsertLead(c *gin.Context) {
	var req domain.LeadUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	result, err := h.leadUC.UpsertLead(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Registration updated"
	if result.Summary.Created {
		message = "Registration created"
	}
	response.Success(c, http.StatusOK, message, result)
}

// GetStatus godoc
// @Summary      Get registration status
// @Description  Resume view for the wizard: whether a registration exists for the email and how far it has progressed.
// @Tags         leads
// @Produce      json
// @Param        email  query     string  true  "Registration email"
// @Success      200    {object}  response.Response{data=domain.RegistrationStatus}
// @Failure      400    {object}  response.Response
// @Router       /leads/status [get]
func (h *LeadHandler) GetStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.Error(apperror.BadRequest("Query parameter 'email' is required"))
		return
	}

	status, err := h.leadUC.GetRegistrationStatus(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Registration status retrieved", status)
}
