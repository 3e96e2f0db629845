package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nkashyap/taskhub-backend/internal/logger"
	"github.com/nkashyap/taskhub-backend/internal/realtime"
	"github.com/nkashyap/taskhub-backend/internal/repos"
	"github.com/nkashyap/taskhub-backend/internal/types"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gormDB.AutoMigrate(&types.User{}, &types.UserToken{}, &types.Task{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gormDB
}

func seedUser(t *testing.T, gormDB *gorm.DB, username string) *types.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	if err := gormDB.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// recordingEmitter captures pushes so tests can assert on exactly what
// would have reached the hub.
type recordingEmitter struct {
	mu       sync.Mutex
	messages []realtime.Message
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append(e.messages, msg)
}

func (e *recordingEmitter) all() []realtime.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.Message, len(e.messages))
	copy(out, e.messages)
	return out
}

func (e *recordingEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.messages)
}

func newTestTaskService(t *testing.T) (TaskService, *gorm.DB, *recordingEmitter) {
	t.Helper()
	gormDB := newTestDB(t)
	log := mustTestLogger(t)
	rec := &recordingEmitter{}
	svc := NewTaskService(
		gormDB,
		log,
		repos.NewTaskRepo(gormDB, log),
		repos.NewUserRepo(gormDB, log),
		NewTaskNotifier(rec),
	)
	return svc, gormDB, rec
}
