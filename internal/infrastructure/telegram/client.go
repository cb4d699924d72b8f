package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rateboard-service/internal/application"
)

const defaultAPIBase = "https://api.telegram.org"

// Client delivers rendered boards through the Telegram Bot API. Delivery
// failures are reported through the boolean result, never as an error, so
// the publish pipeline can record them and keep going.
type Client struct {
	APIBase string
	Token   string
	HTTP    *http.Client
	Log     *zap.Logger
}

var _ application.MessageDispatcher = (*Client)(nil)

func New(apiBase, token string, timeout time.Duration, log *zap.Logger) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		APIBase: apiBase,
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

type inlineKeyboard struct {
	InlineKeyboard [][]application.Button `json:"inline_keyboard"`
}

// SendPhoto posts the image via the bot sendPhoto method as multipart form
// data. The second return value is the raw API response body, kept verbatim
// for the audit trail.
func (c *Client) SendPhoto(ctx context.Context, destination string, image []byte, caption string, buttons [][]application.Button) (bool, string) {
	if c.Token == "" {
		return false, "telegram: bot token is not configured"
	}
	if destination == "" {
		return false, "telegram: destination chat is required"
	}
	if len(image) == 0 {
		return false, "telegram: image is empty"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := c.writeForm(mw, destination, image, caption, buttons); err != nil {
		return false, fmt.Sprintf("telegram: build request: %v", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendPhoto", c.APIBase, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return false, fmt.Sprintf("telegram: create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		c.Log.Warn("telegram.send_failed", zap.String("chat", destination), zap.Error(err))
		return false, fmt.Sprintf("telegram: do request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !ok {
		c.Log.Warn("telegram.send_rejected",
			zap.String("chat", destination),
			zap.Int("status", resp.StatusCode))
	}
	return ok, string(raw)
}

func (c *Client) writeForm(mw *multipart.Writer, destination string, image []byte, caption string, buttons [][]application.Button) error {
	if err := mw.WriteField("chat_id", destination); err != nil {
		return err
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return err
		}
		if err := mw.WriteField("parse_mode", "HTML"); err != nil {
			return err
		}
	}
	if len(buttons) > 0 {
		markup, err := json.Marshal(inlineKeyboard{InlineKeyboard: buttons})
		if err != nil {
			return err
		}
		if err := mw.WriteField("reply_markup", string(markup)); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("photo", "board.png")
	if err != nil {
		return err
	}
	if _, err := fw.Write(image); err != nil {
		return err
	}
	return mw.Close()
}
