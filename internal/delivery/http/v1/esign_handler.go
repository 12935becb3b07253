package v1

import (
	"net/http"

	"go-restaurant-onboarding/internal/delivery/http/response"
	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ESignHandler struct {
	esignUC domain.ESignUsecase
}

// NewESignHandler registers the e-signature routes. The token routes carry a
// strict rate limit - they are the token-guessing surface.
func NewESignHandler(public *gin.RouterGroup, esignUC domain.ESignUsecase, signLimiter gin.HandlerFunc) {
	handler := &ESignHandler{esignUC: esignUC}

	esign := public.Group("/e-signature")
	{
		esign.POST("/issue", signLimiter, handler.Issue)
		esign.GET("/:token", signLimiter, handler.Fetch)
		esign.POST("/:token/sign", signLimiter, handler.Sign)
	}
}

type issueRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Issue godoc
// @Summary      Issue a signing token
// @Description  Bind a fresh single-use signing token to the registration resolved by email and send the signing link. Any prior unconsumed token is superseded.
// @Tags         e-signature
// @Accept       json
// @Produce      json
// @Param        request  body      issueRequest  true  "Registration email"
// @Success      200      {object}  response.Response{data=domain.IssueResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /e-signature/issue [post]
func (h *ESignHandler) Issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("A valid email is required"))
		return
	}

	result, err := h.esignUC.Issue(c.Request.Context(), req.Email)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Signing link issued", result)
}

// Fetch godoc
// @Summary      Fetch the contract for signing
// @Description  Validate a signing token and return the rendered contract. Unknown and already-consumed tokens both return 404.
// @Tags         e-signature
// @Produce      json
// @Param        token  path      string  true  "Signing token"
// @Success      200    {object}  response.Response{data=domain.SigningSession}
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Failure      410    {object}  response.Response
// @Router       /e-signature/{token} [get]
func (h *ESignHandler) Fetch(c *gin.Context) {
	session, err := h.esignUC.FetchForSigning(c.Request.Context(), c.Param("token"), c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Contract retrieved", session)
}

// Sign godoc
// @Summary      Sign the contract
// @Description  Capture the signature for a valid token and consume the token. The token becomes unusable immediately; repeating the call returns 404.
// @Tags         e-signature
// @Accept       json
// @Produce      json
// @Param        token    path      string              true  "Signing token"
// @Param        request  body      domain.SignRequest  true  "Signature data"
// @Success      200      {object}  response.Response{data=domain.SignResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      410      {object}  response.Response
// @Router       /e-signature/{token}/sign [post]
func (h *ESignHandler) Sign(c *gin.Context) {
	var req domain.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body: " + err.Error()))
		return
	}

	result, err := h.esignUC.Consume(c.Request.Context(), c.Param("token"), &req, c.ClientIP())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Contract signed", result)
}
