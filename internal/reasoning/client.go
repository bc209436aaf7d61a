package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"copilot/internal/config"
)

const defaultClientTimeout = 10 * time.Second

// Client talks to the remote reasoning service. It is a consumer, not a
// server: it dispatches one turn, reads history, and opens event streams.
type Client struct {
	baseURL   string
	tokenPath string
	token     string
	http      *http.Client
}

func New(baseURL string) (*Client, error) {
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokenPath: tokenPath,
		http: &http.Client{
			Timeout: defaultClientTimeout,
		},
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithToken(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		http: &http.Client{
			Timeout: defaultClientTimeout,
		},
	}
}

// Send dispatches one user turn. The timeout applies to this call only; a
// cancelled ctx aborts the attempt without waiting it out.
func (c *Client) Send(ctx context.Context, req SendRequest, timeout time.Duration) (*SendResponse, error) {
	var resp SendResponse
	if err := c.doJSONWithTimeout(ctx, http.MethodPost, "/v1/assistant/send", req, true, &resp, timeout); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Error) != "" {
		return nil, errors.New(resp.Error)
	}
	return &resp, nil
}

// History reads the ordered transcript of a server-persisted conversation.
// Caller must not pass a client-generated draft id.
func (c *Client) History(ctx context.Context, conversationID string, limit int) (*HistoryResponse, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, errors.New("conversation id is required")
	}
	path := fmt.Sprintf("/v1/conversations/%s/messages?limit=%d", conversationID, limit)
	var resp HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PlannerSend starts or advances a plan for the given conversation.
func (c *Client) PlannerSend(ctx context.Context, conversationID, text string) (*PlannerSendResponse, error) {
	body := map[string]string{"message": text}
	if id := strings.TrimSpace(conversationID); id != "" {
		body["conversation_id"] = id
	}
	var resp PlannerSendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/planner/send", body, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PlannerRespond answers the planner's pending clarifying question.
func (c *Client) PlannerRespond(ctx context.Context, conversationID, answer string) (*PlannerSendResponse, error) {
	body := map[string]string{"answer": answer}
	if id := strings.TrimSpace(conversationID); id != "" {
		body["conversation_id"] = id
	}
	var resp PlannerSendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/planner/respond", body, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	return c.doJSONWithClient(ctx, method, path, body, requireAuth, out, c.http)
}

func (c *Client) doJSONWithTimeout(ctx context.Context, method, path string, body any, requireAuth bool, out any, timeout time.Duration) error {
	client := c.http
	if timeout > 0 {
		client = &http.Client{
			Timeout:   timeout,
			Transport: c.http.Transport,
		}
	}
	return c.doJSONWithClient(ctx, method, path, body, requireAuth, out, client)
}

func (c *Client) doJSONWithClient(ctx context.Context, method, path string, body any, requireAuth bool, out any, httpClient *http.Client) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) loadToken() error {
	if c.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
