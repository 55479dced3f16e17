// internal/middleware/webhook_test.go
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/playline/agency-backend/internal/utils"
)

func webhookRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhooks/bets", WebhookSignature(secret), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	return router
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhooks/bets", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookSignatureAcceptsValidSignature(t *testing.T) {
	secret := "relay-secret"
	body := []byte(`{"reference_id":"bet-1"}`)
	router := webhookRouter(secret)

	w := postWebhook(router, body, utils.SignPayload(body, secret))

	assert.Equal(t, http.StatusOK, w.Code)
	// Middleware must restore the body for downstream binding.
	assert.Equal(t, string(body), w.Body.String())
}

func TestWebhookSignatureRejectsMissingHeader(t *testing.T) {
	router := webhookRouter("relay-secret")

	w := postWebhook(router, []byte(`{}`), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookSignatureRejectsBadSignature(t *testing.T) {
	secret := "relay-secret"
	body := []byte(`{"reference_id":"bet-1"}`)
	router := webhookRouter(secret)

	w := postWebhook(router, body, utils.SignPayload([]byte("other"), secret))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookSignatureSkippedWithoutSecret(t *testing.T) {
	router := webhookRouter("")

	w := postWebhook(router, []byte(`{}`), "")

	assert.Equal(t, http.StatusOK, w.Code)
}
