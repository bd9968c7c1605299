package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// FCM registration tokens are long opaque strings; the charset below
// covers the token alphabet including the instance-id separator.
var adminTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_:-]{100,300}$`)

type upsertTokenBody struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

// UpsertToken handles POST /api/admin/tokens: register or refresh one
// admin device token. Duplicate submissions update the existing record
// instead of creating a new row.
func (h *Handler) UpsertToken(c *gin.Context) {
	var body upsertTokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token := strings.TrimSpace(body.Token)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}
	if !adminTokenPattern.MatchString(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token format"})
		return
	}
	if len(body.Label) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid label"})
		return
	}

	record, created, err := h.store.UpsertAdminToken(c.Request.Context(), token, body.Label)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "record": record, "created": created})
}
