package api

import (
	"crypto/subtle"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type loginBody struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/auth. Attempts are counted per client
// IP in a sliding window; the comparison is constant-time.
func (h *Handler) Login(c *gin.Context) {
	if h.adminPassword == "" {
		log.Println("Admin password not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
		return
	}

	if !h.loginLimiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts. Try again later."})
		return
	}

	var provided string
	if strings.Contains(c.ContentType(), "application/json") {
		var body loginBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		provided = body.Password
	} else {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		provided = string(raw)
	}

	if provided == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password format"})
		return
	}

	valid := subtle.ConstantTimeCompare([]byte(provided), []byte(h.adminPassword)) == 1
	c.JSON(http.StatusOK, gin.H{"success": valid})
}
