package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/config"
)

// apiKeyHeader carries the application key of this server
const apiKeyHeader = "Api-Key"

type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.Key,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// WithToken returns a copy of the client authenticated with a bearer token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	OperationName string                 `json:"operationName,omitempty"`
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// ErrGraphQL is returned when the API answers with errors. Its message uses
// the "GraphQL error: " prefix the browser client shows.
type ErrGraphQL struct {
	Errors []GraphQLError
}

func (e *ErrGraphQL) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = "GraphQL error: " + ge.Message
	}
	return strings.Join(msgs, "\n")
}

// UserMessage returns the error messages without the prefix, for display
func (e *ErrGraphQL) UserMessage() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return strings.Join(msgs, "\n")
}

// ErrHTTPStatus is returned for non-200 answers
type ErrHTTPStatus struct {
	StatusCode int
	Body       string
}

func (e *ErrHTTPStatus) Error() string {
	return fmt.Sprintf("API error: status %d, body: %s", e.StatusCode, e.Body)
}

// Execute executes a GraphQL query/mutation and decodes data into out
func (c *Client) Execute(ctx context.Context, req GraphQLRequest, out interface{}) error {
	var resp GraphQLResponse
	if err := c.post(ctx, "/graphql", req, &resp); err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		return &ErrGraphQL{Errors: resp.Errors}
	}

	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full request URL; keep only the cause
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("failed to execute request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("API request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		// GraphQL errors may come with a 4xx status
		var gqlResp GraphQLResponse
		if json.Unmarshal(respBody, &gqlResp) == nil && len(gqlResp.Errors) > 0 {
			return &ErrGraphQL{Errors: gqlResp.Errors}
		}
		return &ErrHTTPStatus{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}
