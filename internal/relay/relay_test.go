package relay

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingSender 记录投递参数的测试实现
type recordingSender struct {
	to, subject, text, html string
	err                     error
}

func (s *recordingSender) Send(to, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func TestHandler(t *testing.T) {
	t.Run("post delivers the email", func(t *testing.T) {
		sender := &recordingSender{}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/send-email",
			strings.NewReader(`{"to":"jane@x.com","subject":"hi","text":"hello","html":"<p>hello</p>"}`))

		Handler(sender).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "jane@x.com", sender.to)
		assert.Equal(t, "hi", sender.subject)
		assert.Equal(t, "hello", sender.text)
		assert.Equal(t, "<p>hello</p>", sender.html)
		assert.Contains(t, w.Body.String(), "email sent")
	})

	t.Run("non-post methods get 405", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w := httptest.NewRecorder()
			Handler(&recordingSender{}).ServeHTTP(w, httptest.NewRequest(method, "/send-email", nil))
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		}
	})

	t.Run("preflight options passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		Handler(&recordingSender{}).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/send-email", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing fields get 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/send-email", strings.NewReader(`{"text":"hello"}`))
		Handler(&recordingSender{}).ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid json gets 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/send-email", strings.NewReader("not json"))
		Handler(&recordingSender{}).ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("smtp failure maps to 502 with error body", func(t *testing.T) {
		sender := &recordingSender{err: assert.AnError}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/send-email",
			strings.NewReader(`{"to":"jane@x.com","subject":"hi"}`))
		Handler(sender).ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})
}
