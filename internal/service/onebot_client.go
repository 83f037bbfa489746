package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"teambot/pkg/logger"
)

// OneBotSendResponse is the envelope a go-cqhttp compatible API returns for
// send_group_msg calls
type OneBotSendResponse struct {
	Status  string `json:"status"`
	Retcode int    `json:"retcode"`
}

// OneBotClient delivers group messages through a go-cqhttp compatible HTTP
// API. It implements the Notifier port.
type OneBotClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewOneBotClient creates a new OneBot client
func NewOneBotClient(baseURL string, log *logger.Logger) *OneBotClient {
	return &OneBotClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Send posts a group message. The platform expects a numeric group_id when
// the destination is numeric, a string otherwise.
func (c *OneBotClient) Send(ctx context.Context, groupID, message string) error {
	payload := map[string]interface{}{
		"message": message,
	}
	if id, err := strconv.ParseInt(groupID, 10, 64); err == nil {
		payload["group_id"] = id
	} else {
		payload["group_id"] = groupID
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal send_group_msg payload: %w", err)
	}

	url := fmt.Sprintf("%s/send_group_msg", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call send_group_msg: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send_group_msg returned status %d: %s", resp.StatusCode, string(body))
	}

	var result OneBotSendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse send_group_msg response: %w", err)
	}

	if result.Status != "ok" && result.Retcode != 0 {
		return fmt.Errorf("send_group_msg rejected: status=%s retcode=%d", result.Status, result.Retcode)
	}

	c.logger.WithFields(map[string]interface{}{
		"group_id": groupID,
		"length":   len(message),
	}).Debug("Group message delivered")

	return nil
}
