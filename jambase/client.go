package jambase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jambase_sync/config"
	"jambase_sync/models"
)

// RetryPolicy bounds the fetch retries: MaxAttempts total tries with the
// wait doubling from BaseDelay between them.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type Pagination struct {
	Page       int `json:"page"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Page is one bounded batch of raw events plus its pagination metadata.
type Page struct {
	Events     []models.RawEvent
	Pagination Pagination
}

type Client struct {
	src    *config.SourceConfig
	apiKey string
	client *http.Client
	retry  RetryPolicy

	// OnRequest, when set, is invoked once per HTTP attempt so the caller
	// can count API calls in its run statistics.
	OnRequest func()

	apiCalls int
}

func NewClient(src *config.SourceConfig, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		src:    src,
		apiKey: apiKey,
		client: httpClient,
		retry: RetryPolicy{
			MaxAttempts: src.RetryAttempts,
			BaseDelay:   time.Duration(src.RetryBaseMS) * time.Millisecond,
		},
	}
}

// SetRetryPolicy overrides the source-configured policy.
func (c *Client) SetRetryPolicy(p RetryPolicy) {
	c.retry = p
}

// APICalls returns the number of HTTP attempts made, retries included.
func (c *Client) APICalls() int {
	return c.apiCalls
}

// FetchPage retrieves one page of events, retrying transient failures
// (non-2xx, success=false, transport errors) per the retry policy. After
// the attempts are exhausted the last error is returned and the page is
// fatal for the caller to handle.
func (c *Client) FetchPage(ctx context.Context, page int, modifiedSince string) (*Page, error) {
	delay := c.retry.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			log.Printf("Jambase: page %d retry %d/%d in %s: %v", page, attempt, c.retry.MaxAttempts, delay, lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		result, err := c.fetchPage(ctx, page, modifiedSince)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("page %d after %d attempts: %w", page, c.retry.MaxAttempts, lastErr)
}

func (c *Client) fetchPage(ctx context.Context, page int, modifiedSince string) (*Page, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	// Without expanded identifiers the payload omits artist/venue ids and
	// no foreign key can ever resolve.
	q.Set("expandExternalIdentifiers", "true")
	q.Set("perPage", strconv.Itoa(c.src.PerPage))
	q.Set("page", strconv.Itoa(page))
	if modifiedSince != "" {
		q.Set("eventDateModifiedFrom", modifiedSince)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.src.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	c.apiCalls++
	if c.OnRequest != nil {
		c.OnRequest()
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("jambase API error %d: %s", resp.StatusCode, string(body))
	}

	var result eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("jambase API reported failure for page %d", page)
	}

	return &Page{Events: result.Events, Pagination: result.Pagination}, nil
}

type eventsResponse struct {
	Success    bool              `json:"success"`
	Events     []models.RawEvent `json:"events"`
	Pagination Pagination        `json:"pagination"`
}
