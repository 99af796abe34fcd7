// File: internal/detector/client.go
package detector

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultRequestTimeout = 15 * time.Second

// envelope is the detector API's uniform response wrapper.
type envelope struct {
	Message string              `json:"message"`
	Data    stdjson.RawMessage `json:"data"`
}

// Client talks to the external detection service over its JSON API. It
// implements schemas.Detector.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient validates the base URL and returns a client with a default
// request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid detector base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("detector base URL %q must use http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Named("detector"),
	}, nil
}

// SetHTTPClient allows overriding the default HTTP client, primarily for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// TaskStatus implements schemas.StatusProvider. An unknown task id is
// reported with schemas.ErrNotFound.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*schemas.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id must not be empty")
	}

	var task schemas.Task
	err := c.get(ctx, "/api/v1/tasks/"+url.PathEscape(taskID), &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Submit implements schemas.Detector. The detector echoes the task id from
// the submission.
func (c *Client) Submit(ctx context.Context, sub schemas.Submission) (string, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/detection/submit", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var accepted struct {
		TaskID string `json:"task_id"`
	}
	if err := c.do(req, &accepted); err != nil {
		return "", err
	}

	c.log.Debug("Submission accepted",
		zap.String("task_id", accepted.TaskID),
		zap.String("analysis_type", string(sub.AnalysisType)))
	return accepted.TaskID, nil
}

// DetectionRules implements schemas.Detector.
func (c *Client) DetectionRules(ctx context.Context) (map[string]string, error) {
	rules := make(map[string]string)
	if err := c.get(ctx, "/api/v1/detection/rules", &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Ping reports whether the detector's health endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("detector unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	return c.do(req, out)
}

// do executes the request, unwraps the response envelope and decodes its data
// field into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("detector request %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read detector response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("detector has no record of %s: %w", req.URL.Path, schemas.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("detector returned status %d for %s", resp.StatusCode, req.URL.Path)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode detector envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("detector response for %s has no data", req.URL.Path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode detector payload: %w", err)
	}
	return nil
}
