package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultHostSuffix  = "aiplatform.googleapis.com"
	defaultCallTimeout = 300 * time.Second
	userAgent          = "veoflow-server/1.0"
)

// Operation is the long-running operation handle returned on submit.
type Operation struct {
	Name string `json:"name"`
}

// OperationStatus is the state of a long-running operation. A nil Response
// with Done true means the operation produced nothing.
type OperationStatus struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Response *OperationResponse `json:"response"`
}

// OperationResponse holds the generation result of a completed operation.
type OperationResponse struct {
	Videos                []VideoResult `json:"videos"`
	RaiMediaFilteredCount int           `json:"raiMediaFilteredCount"`
}

// VideoResult is a single generated video as the API reports it.
type VideoResult struct {
	GcsURI             string `json:"gcsUri"`
	MimeType           string `json:"mimeType"`
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

// Client calls the Vertex AI prediction API. It performs no retries; the
// browser drives the poll loop.
type Client struct {
	httpClient *http.Client
	hostSuffix string
	baseURL    string
	timeout    time.Duration
	logger     *zap.Logger
}

// ClientConfig holds gateway configuration. BaseURL overrides the regional
// endpoint entirely; when empty the endpoint is derived from the request's
// location and HostSuffix.
type ClientConfig struct {
	HTTPClient  *http.Client
	HostSuffix  string
	BaseURL     string
	CallTimeout time.Duration
	Logger      *zap.Logger
}

// NewClient creates a new Vertex AI client.
func NewClient(cfg *ClientConfig) *Client {
	c := &Client{
		httpClient: cfg.HTTPClient,
		hostSuffix: cfg.HostSuffix,
		baseURL:    cfg.BaseURL,
		timeout:    cfg.CallTimeout,
		logger:     cfg.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.hostSuffix == "" {
		c.hostSuffix = defaultHostSuffix
	}
	if c.timeout == 0 {
		c.timeout = defaultCallTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Submit starts a long-running prediction. The response must carry an
// operation name; a 200 without one is reported as an invalid response.
func (c *Client) Submit(ctx context.Context, token, projectID, location, model string, req *PredictionRequest) (*Operation, error) {
	url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:predictLongRunning",
		c.endpoint(location), projectID, location, model)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode prediction request: %w", err)
	}

	c.logger.Debug("submitting prediction",
		zap.String("model", model),
		zap.String("location", location),
	)

	respBody, err := c.do(ctx, http.MethodPost, url, token, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var op Operation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if op.Name == "" {
		return nil, fmt.Errorf("%w: missing operation name", ErrInvalidResponse)
	}
	return &op, nil
}

// Poll fetches the current state of a long-running operation.
func (c *Client) Poll(ctx context.Context, token, location, operationName string) (*OperationStatus, error) {
	url := fmt.Sprintf("%s/v1/%s", c.endpoint(location), operationName)

	respBody, err := c.do(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return nil, err
	}

	var status OperationStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &status, nil
}

// do performs a single authenticated call and maps non-200 responses to an
// APIError carrying the upstream message.
func (c *Client) do(ctx context.Context, method, url, token string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build vertex request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vertex request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read vertex response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(respBody),
		}
	}
	return respBody, nil
}

// endpoint returns the regional API endpoint for a location.
func (c *Client) endpoint(location string) string {
	if c.baseURL != "" {
		return strings.TrimSuffix(c.baseURL, "/")
	}
	return fmt.Sprintf("https://%s-%s", location, c.hostSuffix)
}

// upstreamMessage extracts error.message from an error body, falling back
// to a generic message when the body is not the expected shape.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return "Unknown error"
}
