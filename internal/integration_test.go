package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"request-approval-backend/config"
	"request-approval-backend/internal/api"
	"request-approval-backend/internal/maintenance"
	"request-approval-backend/internal/model"
	"request-approval-backend/internal/notification"
	"request-approval-backend/internal/push"
	"request-approval-backend/internal/store"
)

const adminPassword = "integration-secret"

// scriptedGateway answers validity by token prefix and records sends.
type scriptedGateway struct {
	mu       sync.Mutex
	messages []push.Message
	sends    chan push.Message
}

func (g *scriptedGateway) CheckValidity(_ context.Context, token string) (bool, error) {
	return !strings.HasPrefix(token, "dead"), nil
}

func (g *scriptedGateway) Send(_ context.Context, msg push.Message) (string, error) {
	g.mu.Lock()
	g.messages = append(g.messages, msg)
	g.mu.Unlock()
	g.sends <- msg
	return "projects/test/messages/1", nil
}

// TestRequestApprovalLifecycle walks the whole flow: an admin device
// registers, a user submits a request, the broadcast reaches the live
// admin device and prunes the dead one, and the approval decision
// notifies the requester.
func TestRequestApprovalLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 1. In-memory database and store.
	testDB, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, testDB.AutoMigrate(&model.Request{}, &model.AdminToken{}))

	appStore := store.NewGormStore(testDB)

	// 2. Scripted push gateway and the full notification pipeline.
	gateway := &scriptedGateway{sends: make(chan push.Message, 16)}
	notifier := notification.NewNotifier(appStore, gateway, time.Second)
	dispatcher := notification.NewDispatcher(2, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Auth.AdminPassword = adminPassword
	cfg.Auth.LoginMaxAttempts = 5
	cfg.Auth.LoginWindow = time.Minute

	router := api.NewRouter(cfg, appStore, notifier, dispatcher,
		maintenance.NewService(appStore, t.TempDir()))

	send := func(method, path string, body any, bearer string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 3. Two admin devices register; one of them is already dead.
	liveToken := "live" + strings.Repeat("a", 140)
	deadToken := "dead" + strings.Repeat("b", 140)
	for _, token := range []string{liveToken, deadToken} {
		w := send(http.MethodPost, "/api/admin/tokens", map[string]string{"token": token}, adminPassword)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// 4. A user submits a request with their own device token.
	w := send(http.MethodPost, "/api/requests", map[string]any{
		"applicant": []map[string]string{{"name": "김철수"}},
		"contact":   "010-1234-5678",
		"reason":    "스터디룸 예약",
		"time":      "6",
		"fcm":       "requester-token",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp struct {
		Record model.Request `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	requestID := createResp.Record.ID

	// 5. The background broadcast reaches only the live admin device.
	select {
	case msg := <-gateway.sends:
		assert.Equal(t, liveToken, msg.Token)
		assert.Equal(t, "신청 알림", msg.Notification.Title)
		assert.Equal(t, fmt.Sprintf("%d", requestID), msg.Data["requestId"])
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the admin broadcast")
	}

	// The dead token was pruned from the registry.
	require.Eventually(t, func() bool {
		tokens, err := appStore.ListAdminTokens(ctx)
		require.NoError(t, err)
		return len(tokens) == 1 && tokens[0].Token == liveToken
	}, 3*time.Second, 50*time.Millisecond)

	// 6. The admin approves; the requester is notified synchronously.
	w = send(http.MethodPatch, fmt.Sprintf("/api/requests/%d", requestID),
		map[string]any{"is_approved": true}, adminPassword)
	require.Equal(t, http.StatusOK, w.Code)

	var decisionResp struct {
		Record       model.Request                  `json:"record"`
		Notification notification.UserNotifyOutcome `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decisionResp))
	assert.Equal(t, model.StatusApproved, decisionResp.Record.Status)
	assert.True(t, decisionResp.Notification.Success)
	assert.True(t, decisionResp.Notification.Approved)

	select {
	case msg := <-gateway.sends:
		assert.Equal(t, "requester-token", msg.Token)
		assert.Equal(t, "신청 승인", msg.Notification.Title)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the requester notification")
	}
}
