package v1

import (
	"net/http"

	"go-restaurant-onboarding/internal/delivery/http/response"
	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentUC domain.DocumentUsecase
}

func NewDocumentHandler(public *gin.RouterGroup, documentUC domain.DocumentUsecase) {
	handler := &DocumentHandler{documentUC: documentUC}

	public.POST("/documents/validate", handler.Validate)
}

// Validate godoc
// @Summary      Validate an uploaded document
// @Description  Check a document against a reference template, or against its declared type when no reference is given. Unreadable documents come back as unvalidatable rather than valid.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ValidateDocumentRequest  true  "Document to validate"
// @Success      200      {object}  response.Response{data=domain.ValidationVerdict}
// @Failure      400      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /documents/validate [post]
func (h *DocumentHandler) Validate(c *gin.Context) {
	var req domain.ValidateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	verdict, err := h.documentUC.Validate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Document validated", verdict)
}
