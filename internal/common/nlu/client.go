// Package nlu is the HTTP client for the external language-understanding
// service that turns free-text queries into structured criteria. Every failure
// mode maps to ErrUnavailable or ErrTimeout so the resolver can switch to its
// keyword fallback without inspecting transport details.
package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	commonhttp "nutrition-workers/internal/common/http"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/models"
)

var (
	ErrUnavailable = errors.New("NLU_SERVICE_FAILED")
	ErrTimeout     = errors.New("NLU_TIMEOUT")
)

// Config holds the client settings, normally sourced from apis.nlu.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	config Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewClient(config Config, log logger.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"component": "nlu-client",
		}),
	}
}

// ParseCriteria submits the query (and prior criteria, when refining) and
// returns the structured criteria the service produced.
func (c *Client) ParseCriteria(ctx context.Context, query string, previous *models.Criteria) (*models.Criteria, error) {
	requestBody := map[string]interface{}{
		"query": query,
	}
	if previous != nil {
		requestBody["previousCriteria"] = previous
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}

		// The request body is consumed on send, so each attempt builds a
		// fresh request.
		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/ai/parse-criteria", bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrUnavailable)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Criteria *models.Criteria `json:"criteria"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}
	if apiResponse.Criteria == nil {
		return nil, fmt.Errorf("%w: response carried no criteria", ErrUnavailable)
	}

	c.logger.Debug("criteria parsed", map[string]interface{}{
		"nutrientCount": len(apiResponse.Criteria.Nutrients),
		"hasName":       apiResponse.Criteria.Name != "",
		"sort":          apiResponse.Criteria.Sort,
	})

	return apiResponse.Criteria, nil
}
