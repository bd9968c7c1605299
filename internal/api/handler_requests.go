package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"request-approval-backend/internal/model"
	"request-approval-backend/internal/store"
)

var numericTime = regexp.MustCompile(`^\d+$`)

type createRequestBody struct {
	Applicant []model.Applicant `json:"applicant"`
	Contact   string            `json:"contact"`
	Reason    string            `json:"reason"`
	Time      string            `json:"time"`
	Fcm       string            `json:"fcm"`
}

// CreateRequest handles POST /api/requests. The admin broadcast is
// dispatched to the background pool; the response never waits on it.
func (h *Handler) CreateRequest(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if len(body.Applicant) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant data"})
		return
	}
	if len(body.Contact) < 5 || len(body.Contact) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact"})
		return
	}
	if len(body.Reason) < 1 || len(body.Reason) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reason"})
		return
	}
	if !numericTime.MatchString(body.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time"})
		return
	}
	if len(body.Fcm) > 512 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fcm token"})
		return
	}

	record := model.Request{
		Applicant: body.Applicant,
		Contact:   body.Contact,
		Reason:    body.Reason,
		Time:      body.Time,
		IP:        c.ClientIP(),
		PushToken: body.Fcm,
		Status:    model.StatusPending,
	}
	if err := h.store.CreateRequest(c.Request.Context(), &record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save request"})
		return
	}

	h.dispatcher.Dispatch(record)

	c.JSON(http.StatusCreated, gin.H{
		"success":             true,
		"record":              record,
		"notificationsQueued": true,
	})
}

// ListRequests handles GET /api/requests with optional filters. The
// isApproved filter exposes decision state and requires the admin
// password.
func (h *Handler) ListRequests(c *gin.Context) {
	var filter store.RequestFilter

	if raw, ok := c.GetQuery("id"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
			return
		}
		filter.ID = &id
	}
	if raw, ok := c.GetQuery("status"); ok {
		status := model.RequestStatus(raw)
		filter.Status = &status
	}
	if raw, ok := c.GetQuery("isApproved"); ok {
		if !h.isAdmin(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		approved := raw == "true"
		filter.IsApproved = &approved
	}
	if raw, ok := c.GetQuery("created_at_gte"); ok {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid created_at_gte"})
			return
		}
		filter.CreatedAtGte = &t
	}
	if raw, ok := c.GetQuery("created_at_lte"); ok {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid created_at_lte"})
			return
		}
		filter.CreatedAtLte = &t
	}

	requests, err := h.store.ListRequests(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type updateRequestBody struct {
	Status     *model.RequestStatus `json:"status"`
	IsApproved *bool                `json:"is_approved"`
	Reason     *string              `json:"reason"`
}

// UpdateRequest handles PATCH /api/requests/:id. When is_approved is
// present this is the admin decision: the status is kept consistent
// with the flag and the requester is notified synchronously, though a
// notification failure never fails the decision itself.
func (h *Handler) UpdateRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var body updateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if body.Status == nil && body.IsApproved == nil && body.Reason == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}
	if body.Status != nil && !body.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if body.Reason != nil && (len(*body.Reason) < 1 || len(*body.Reason) > 500) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reason"})
		return
	}

	patch := store.RequestPatch{
		Status:     body.Status,
		IsApproved: body.IsApproved,
		Reason:     body.Reason,
	}
	if body.IsApproved != nil && body.Status == nil {
		status := model.StatusFor(body.IsApproved)
		patch.Status = &status
	}

	record, err := h.store.UpdateRequest(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
		return
	}

	if body.IsApproved == nil {
		c.JSON(http.StatusOK, record)
		return
	}

	outcome := h.notifier.NotifyRequester(c.Request.Context(), id, *body.IsApproved)
	c.JSON(http.StatusOK, gin.H{"record": record, "notification": outcome})
}

// DeleteRequest handles DELETE /api/requests/:id.
func (h *Handler) DeleteRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	if err := h.store.DeleteRequest(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
