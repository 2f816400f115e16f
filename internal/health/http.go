package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ragstack-deploy/internal/models"
)

// httpStatusChecker HTTP响应状态码等于期望值即通过
type httpStatusChecker struct {
	url     string
	status  int
	timeout time.Duration
}

func (c *httpStatusChecker) Type() models.GateType { return models.GateHTTPStatus }

func (c *httpStatusChecker) Check(ctx context.Context) error {
	resp, err := probe(ctx, c.url, c.timeout)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != c.status {
		return fmt.Errorf("GET %s returned status %d, expected %d", c.url, resp.StatusCode, c.status)
	}
	return nil
}

/**
 * httpFieldChecker passes when a JSON array field contains the expected value
 * @description
 * - 典型用法：确认ollama的GET /api/tags返回的models列表里已经出现期望的模型tag
 * - Array elements may be objects (compared by key) or plain strings
 */
type httpFieldChecker struct {
	url     string
	field   string
	key     string
	expect  string
	timeout time.Duration
}

func (c *httpFieldChecker) Type() models.GateType { return models.GateHTTPField }

func (c *httpFieldChecker) Check(ctx context.Context) error {
	resp, err := probe(ctx, c.url, c.timeout)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", c.url, resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode response of %s: %w", c.url, err)
	}

	items, ok := body[c.field].([]interface{})
	if !ok {
		return fmt.Errorf("field '%s' missing or not a list in response of %s", c.field, c.url)
	}
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v == c.expect {
				return nil
			}
		case map[string]interface{}:
			if s, ok := v[c.key].(string); ok && s == c.expect {
				return nil
			}
		}
	}
	return fmt.Errorf("'%s' not present in field '%s' of %s", c.expect, c.field, c.url)
}

func probe(ctx context.Context, url string, timeout time.Duration) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	return resp, nil
}
