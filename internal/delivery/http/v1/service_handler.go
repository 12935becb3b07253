package v1

import (
	"net/http"

	"go-restaurant-onboarding/internal/delivery/http/response"
	"go-restaurant-onboarding/internal/domain"

	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	services domain.ServiceWriter
}

func NewServiceHandler(public *gin.RouterGroup, services domain.ServiceWriter) {
	handler := &ServiceHandler{services: services}

	public.GET("/services", handler.ListCatalog)
}

// ListCatalog godoc
// @Summary      List the service catalog
// @Description  Return the services a restaurant can select during registration.
// @Tags         services
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.CatalogService}
// @Failure      502  {object}  response.Response
// @Router       /services [get]
func (h *ServiceHandler) ListCatalog(c *gin.Context) {
	services, err := h.services.ListCatalog(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Service catalog retrieved", services)
}
