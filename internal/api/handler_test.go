package api

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"request-approval-backend/config"
	"request-approval-backend/internal/maintenance"
	"request-approval-backend/internal/model"
	"request-approval-backend/internal/notification"
	"request-approval-backend/internal/push"
	"request-approval-backend/internal/store"
)

const testAdminPassword = "correct-horse"

// recordingGateway is a mock push.Gateway capturing sent messages.
type recordingGateway struct {
	mu       sync.Mutex
	sendErr  error
	messages []push.Message
}

func (g *recordingGateway) CheckValidity(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (g *recordingGateway) Send(_ context.Context, msg push.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages = append(g.messages, msg)
	if g.sendErr != nil {
		return "", g.sendErr
	}
	return "projects/test/messages/1", nil
}

func (g *recordingGateway) sent() []push.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]push.Message(nil), g.messages...)
}

type testServer struct {
	router     *gin.Engine
	store      store.Store
	gateway    *recordingGateway
	dispatcher *notification.Dispatcher
}

// newTestServer wires the full router over an in-memory database. The
// dispatcher is NOT started so tests can observe queued broadcasts.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Request{}, &model.AdminToken{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	s := store.NewGormStore(db)
	gateway := &recordingGateway{}
	notifier := notification.NewNotifier(s, gateway, time.Second)
	dispatcher := notification.NewDispatcher(4, notifier)
	maint := maintenance.NewService(s, t.TempDir())

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Auth.AdminPassword = testAdminPassword
	cfg.Auth.LoginMaxAttempts = 5
	cfg.Auth.LoginWindow = time.Minute

	return &testServer{
		router:     NewRouter(cfg, s, notifier, dispatcher, maint),
		store:      s,
		gateway:    gateway,
		dispatcher: dispatcher,
	}
}
