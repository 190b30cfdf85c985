package mailer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blues/gfc/internal/database"
	"github.com/blues/gfc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupOutbox(t *testing.T, relay http.HandlerFunc) (*gorm.DB, *Dispatcher, *atomic.Int32) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	var sends atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sends.Add(1)
		relay(w, r)
	}))
	t.Cleanup(srv.Close)

	dispatcher, err := NewDispatcher(db, NewClient(srv.URL), 2, 3)
	require.NoError(t, err)
	t.Cleanup(dispatcher.Stop)
	return db, dispatcher, &sends
}

func relayOK(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"message": "email sent"})
}

func TestDeliverClaimsBeforeSending(t *testing.T) {
	db, dispatcher, sends := setupOutbox(t, relayOK)

	email := &model.EmailOutboxModel{To: "jane@x.com", Subject: "hi", Text: "hello"}
	require.NoError(t, dispatcher.Enqueue(db, email))

	dispatcher.deliver(email.Id)
	assert.Equal(t, int32(1), sends.Load())

	var got model.EmailOutboxModel
	require.NoError(t, db.First(&got, email.Id).Error)
	assert.Equal(t, model.OutboxStatusSent, got.Status)
	assert.Equal(t, 1, got.Attempts)

	// a second delivery attempt loses the claim and sends nothing
	dispatcher.deliver(email.Id)
	assert.Equal(t, int32(1), sends.Load())

	require.NoError(t, db.First(&got, email.Id).Error)
	assert.Equal(t, 1, got.Attempts)
}

func TestDeliverSkipsClaimedRow(t *testing.T) {
	db, dispatcher, sends := setupOutbox(t, relayOK)

	email := &model.EmailOutboxModel{To: "jane@x.com", Subject: "hi"}
	require.NoError(t, dispatcher.Enqueue(db, email))
	require.NoError(t, db.Model(email).Update("status", model.OutboxStatusSending).Error)

	// the row belongs to another deliverer, nothing is sent
	dispatcher.deliver(email.Id)
	assert.Equal(t, int32(0), sends.Load())
}

func TestDeliverFailureReturnsRowToPending(t *testing.T) {
	db, dispatcher, sends := setupOutbox(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	email := &model.EmailOutboxModel{To: "jane@x.com", Subject: "hi"}
	require.NoError(t, dispatcher.Enqueue(db, email))

	dispatcher.deliver(email.Id)
	var got model.EmailOutboxModel
	require.NoError(t, db.First(&got, email.Id).Error)
	assert.Equal(t, model.OutboxStatusPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.NotEmpty(t, got.LastError)

	// attempt cap reached, row goes terminal
	dispatcher.deliver(email.Id)
	dispatcher.deliver(email.Id)
	require.NoError(t, db.First(&got, email.Id).Error)
	assert.Equal(t, model.OutboxStatusFailed, got.Status)
	assert.Equal(t, 3, got.Attempts)

	// terminal rows are never redelivered
	dispatcher.deliver(email.Id)
	assert.Equal(t, int32(3), sends.Load())
}

func TestSweepReclaimsStaleSendingRows(t *testing.T) {
	db, dispatcher, _ := setupOutbox(t, relayOK)

	email := &model.EmailOutboxModel{To: "jane@x.com", Subject: "hi"}
	require.NoError(t, dispatcher.Enqueue(db, email))
	require.NoError(t, db.Model(email).UpdateColumns(map[string]interface{}{
		"status":     model.OutboxStatusSending,
		"updated_at": time.Now().Add(-time.Hour),
	}).Error)

	count, err := dispatcher.SweepPending()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Eventually(t, func() bool {
		var got model.EmailOutboxModel
		if err := db.First(&got, email.Id).Error; err != nil {
			return false
		}
		return got.Status == model.OutboxStatusSent
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSweepLeavesFreshSendingRowsAlone(t *testing.T) {
	db, dispatcher, sends := setupOutbox(t, relayOK)

	email := &model.EmailOutboxModel{To: "jane@x.com", Subject: "hi"}
	require.NoError(t, dispatcher.Enqueue(db, email))
	require.NoError(t, db.Model(email).Update("status", model.OutboxStatusSending).Error)

	count, err := dispatcher.SweepPending()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, int32(0), sends.Load())
}
