package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/genoassist-br/genoassist/internal/logger"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL   = "http://localhost:3000"
	DefaultPath      = "/api/analyze"
	DefaultTimeout   = 120 * time.Second
	DefaultUserAgent = "genoassist-cli"

	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 8 << 20
)

// ClientConfig configures the analysis service endpoint
type ClientConfig struct {
	BaseURL   string        `json:"base_url"`
	Path      string        `json:"path"`
	Timeout   time.Duration `json:"timeout"`
	UserAgent string        `json:"user_agent"`
}

// DefaultClientConfig returns a config pointing at a local dev server
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   DefaultBaseURL,
		Path:      DefaultPath,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// endpoint validates the config and returns the resolved URL
func (c ClientConfig) endpoint() (*url.URL, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", c.BaseURL)
	}
	path := c.Path
	if path == "" {
		path = DefaultPath
	}
	return base.JoinPath(path), nil
}

// Client talks to the analysis service over HTTP
type Client struct {
	mu        sync.RWMutex
	endpoint  *url.URL
	client    *http.Client
	userAgent string
	log       *logger.Logger
}

// NewClient creates a client for the configured endpoint
func NewClient(config ClientConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Discard()
	}
	c := &Client{log: log.WithComponent("client")}
	if err := c.Reconfigure(config); err != nil {
		return nil, err
	}
	return c, nil
}

// Reconfigure swaps endpoint and timeout. Requests already in flight keep
// the settings they started with.
func (c *Client) Reconfigure(config ClientConfig) error {
	endpoint, err := config.endpoint()
	if err != nil {
		return err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = endpoint
	c.client = &http.Client{Timeout: timeout}
	c.userAgent = userAgent
	return nil
}

// Endpoint returns the URL requests are posted to
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint.String()
}

// analyzeRequest is the wire shape of a submission
type analyzeRequest struct {
	Variant string            `json:"variant"`
	APIKeys map[string]string `json:"api_keys"`
}

// analyzeResponse holds the raw top-level fields of a response body. Each
// field is decoded on its own so one bad value cannot hide the others.
type analyzeResponse map[string]json.RawMessage

// Analyze posts the request once and reduces the response. Failures are
// always *AnalysisError.
func (c *Client) Analyze(ctx context.Context, req Request) (*Report, error) {
	c.mu.RLock()
	endpoint, client, userAgent := c.endpoint.String(), c.client, c.userAgent
	c.mu.RUnlock()

	requestID := uuid.NewString()
	fail := func(err *AnalysisError) (*Report, error) {
		err.RequestID = requestID
		return nil, err
	}

	req = req.Normalized()
	body, err := json.Marshal(analyzeRequest{Variant: req.Variant, APIKeys: req.APIKeys})
	if err != nil {
		return fail(NewTransportError(fmt.Errorf("marshal request: %w", err)))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fail(NewTransportError(fmt.Errorf("create request: %w", err)))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	fields := []logger.Field{logger.RequestID(requestID), logger.Variant(req.Variant)}
	for name, value := range req.APIKeys {
		fields = append(fields, logger.Secret(strings.ToLower(name), value))
	}
	c.log.DebugWithFields("posting analysis request to %s", fields, endpoint)

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		c.log.WarnWithFields("analysis request failed", []logger.Field{logger.RequestID(requestID), logger.Error(err)})
		return fail(NewTransportError(err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fail(NewTransportError(fmt.Errorf("read response: %w", err)))
	}
	if len(raw) > maxResponseBytes {
		c.log.WarnWithFields("analysis response exceeds size limit", []logger.Field{
			logger.RequestID(requestID), logger.Status(resp.StatusCode), logger.F("limit_bytes", maxResponseBytes),
		})
		return fail(withStatus(NewTransportError(ErrResponseTooLarge), resp.StatusCode))
	}

	c.log.DebugWithFields("analysis response received", []logger.Field{
		logger.RequestID(requestID), logger.Status(resp.StatusCode), logger.Duration(time.Since(start)),
	})

	report, aerr := decodeResponse(raw, resp.StatusCode)
	if aerr != nil {
		if aerr.IsService() {
			c.log.InfoWithFields("service rejected analysis", []logger.Field{logger.RequestID(requestID), logger.Status(resp.StatusCode)})
		}
		return fail(aerr)
	}

	report.RequestID = requestID
	if report.Variant == "" {
		report.Variant = req.Variant
	}
	if !report.IsComplete() {
		c.log.WarnWithFields("analysis response is missing fields", []logger.Field{
			logger.RequestID(requestID), logger.F("fields", strings.Join(report.Incomplete, ",")),
		})
	}
	return report, nil
}

// decodeResponse maps a response body onto a report or an error
func decodeResponse(raw []byte, statusCode int) (*Report, *AnalysisError) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, withStatus(NewTransportError(errors.New("empty response body")), statusCode)
	}

	var payload analyzeResponse
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, withStatus(NewTransportError(fmt.Errorf("decode response: %w", err)), statusCode)
	}

	if message, ok := errorMessage(payload["error"]); ok {
		return nil, NewServiceError(message, statusCode)
	}

	if statusCode < 200 || statusCode > 299 {
		return nil, NewServiceError(fmt.Sprintf("o servidor respondeu com status %d", statusCode), statusCode)
	}

	return payload.toReport(), nil
}

func withStatus(err *AnalysisError, statusCode int) *AnalysisError {
	err.StatusCode = statusCode
	return err
}

// errorMessage extracts a truthy error field. Strings are returned verbatim,
// other truthy JSON values as their JSON text.
func errorMessage(raw json.RawMessage) (string, bool) {
	value := strings.TrimSpace(string(raw))
	switch value {
	case "", "null", "false", "0", `""`:
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n == 0 {
		return "", false
	}
	return value, true
}

// toReport decodes the success fields. A field that is absent or has the
// wrong type is listed in Incomplete and left at its zero value.
func (p analyzeResponse) toReport() *Report {
	report := &Report{}
	flag := func(name string) { report.Incomplete = append(report.Incomplete, name) }

	decodeOptional(p["variant"], &report.Variant)

	if !decodeField(p["report"], &report.Markdown) {
		flag("report")
	}

	if count, ok := decodeCount(p["pubmed_count"]); ok {
		report.PubMedCount = count
	} else {
		flag("pubmed_count")
	}

	var clinVar map[string]json.RawMessage
	if !decodeField(p["clinvar_data"], &clinVar) {
		flag("clinvar_data")
		return report
	}

	cv := &report.ClinVar
	if !decodeField(clinVar["found"], &cv.Found) {
		flag("clinvar_data.found")
	}
	if raw := clinVar["clinical_significance"]; isPresent(raw) {
		var significance string
		if decodeField(raw, &significance) {
			cv.ClinicalSignificance = &significance
		} else {
			flag("clinvar_data.clinical_significance")
		}
	}
	decodeOptional(clinVar["uid"], &cv.UID)
	decodeOptional(clinVar["title"], &cv.Title)
	decodeOptional(clinVar["review_status"], &cv.ReviewStatus)
	decodeOptional(clinVar["last_evaluated"], &cv.LastEvaluated)
	decodeOptional(clinVar["accession"], &cv.Accession)
	decodeOptional(clinVar["traits"], &cv.Traits)

	return report
}

// isPresent reports whether a field exists and is not null
func isPresent(raw json.RawMessage) bool {
	value := bytes.TrimSpace(raw)
	return len(value) > 0 && !bytes.Equal(value, []byte("null"))
}

// decodeField decodes a required field, false when absent, null or mistyped
func decodeField(raw json.RawMessage, dst interface{}) bool {
	if !isPresent(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// decodeOptional decodes a detail field, leaving dst untouched on failure
func decodeOptional(raw json.RawMessage, dst interface{}) {
	_ = decodeField(raw, dst)
}

// decodeCount accepts any non-negative whole JSON number, including 12.0
func decodeCount(raw json.RawMessage) (int, bool) {
	var n float64
	if !decodeField(raw, &n) {
		return 0, false
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
