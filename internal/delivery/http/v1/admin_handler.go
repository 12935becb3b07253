package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	adminUC domain.AdminUsecase
}

// NewAdminHandler registers the back-office routes (admin JWT required)
func NewAdminHandler(protected *gin.RouterGroup, adminUC domain.AdminUsecase) {
	handler := &AdminHandler{adminUC: adminUC}

	admin := protected.Group("/admin")
	{
		admin.GET("/leads/export", handler.ExportLeads)
	}
}

// ExportLeads godoc
// @Summary      Export leads as XLSX
// @Description  Download the current leads as a spreadsheet for back-office reporting.
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        limit  query     int  false  "Maximum rows (default 500)"
// @Success      200    {file}    file
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /admin/leads/export [get]
// @Security     BearerAuth
func (h *AdminHandler) ExportLeads(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.Error(apperror.BadRequest("Query parameter 'limit' must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	export, err := h.adminUC.ExportLeads(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, xlsxContentType, export.Content)
}
