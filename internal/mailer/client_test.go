package mailer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientSend(t *testing.T) {
	t.Run("relay success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var p Payload
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, "jane@x.com", p.To)
			json.NewEncoder(w).Encode(map[string]string{"message": "email sent"})
		}))
		defer srv.Close()

		res := NewClient(srv.URL).Send(Payload{To: "jane@x.com", Subject: "hi", Text: "hello"})
		assert.True(t, res.Success)
		assert.Equal(t, "email sent", res.Message)
	})

	t.Run("provider error body maps to failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"error": "mailbox unavailable"})
		}))
		defer srv.Close()

		res := NewClient(srv.URL).Send(Payload{To: "jane@x.com", Subject: "hi"})
		assert.False(t, res.Success)
		assert.Equal(t, "mailbox unavailable", res.Error)
	})

	t.Run("non-2xx maps to failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		res := NewClient(srv.URL).Send(Payload{To: "jane@x.com", Subject: "hi"})
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})

	t.Run("unreachable relay never panics or errors out", func(t *testing.T) {
		res := NewClient("http://127.0.0.1:1/send-email").Send(Payload{To: "jane@x.com", Subject: "hi"})
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})

	t.Run("each send is an independent attempt", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"message": "email sent"})
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		assert.False(t, client.Send(Payload{To: "jane@x.com", Subject: "hi"}).Success)
		// a failed send leaves no state behind, the next attempt starts clean
		assert.True(t, client.Send(Payload{To: "jane@x.com", Subject: "hi"}).Success)
		assert.Equal(t, int32(2), calls.Load())
	})
}
