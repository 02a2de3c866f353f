package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Webhook receives Telegram updates over HTTP when a webhook base URL is
// configured, verifying the shared secret Telegram echoes back on every call.
type Webhook struct {
	handler *UpdateHandler
	secret  string
}

func NewWebhook(handler *UpdateHandler, secret string) *Webhook {
	return &Webhook{handler: handler, secret: secret}
}

func (w *Webhook) Handle(c *gin.Context) {
	if w.secret != "" {
		headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if headerSecret != w.secret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	// Handled off the request goroutine so Telegram gets its 200 before any
	// directory or database work starts.
	go w.handler.Handle(context.Background(), upd)

	c.Status(http.StatusOK)
}
