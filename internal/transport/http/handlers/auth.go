package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/top-magar/indigo-sub018/internal/transport/http/middleware"
)

// AuthHandler issues dashboard session tokens. Credential verification is
// delegated to the external identity provider; this endpoint exchanges an
// already-verified identity for a platform session.
type AuthHandler struct {
	verifier *middleware.SessionVerifier
}

// NewAuthHandler wires the auth handler.
func NewAuthHandler(verifier *middleware.SessionVerifier) *AuthHandler {
	return &AuthHandler{verifier: verifier}
}

// IssueSession mints a session token binding a user to a tenant.
func (h *AuthHandler) IssueSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id and tenant_id are required"))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id must be a uuid"))
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "tenant_id must be a uuid"))
		return
	}

	token, err := h.verifier.IssueToken(userID, tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "session issuance failed"))
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Token: token})
}
