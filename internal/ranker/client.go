package ranker

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"skyshield/internal/config"
)

// Ranked is one scored candidate returned by the coherence ranker. Text is
// the candidate narrative verbatim.
type Ranked struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type Response struct {
	Top []Ranked `json:"top"`
}

// Client scores candidate narratives against a situation query. The core
// engine depends only on this interface; tests inject a deterministic stub.
type Client interface {
	Rank(ctx context.Context, query string, candidates []string) (*Response, time.Duration, error)
}

type compareRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
	UseFreq    bool     `json:"use_freq"`
	TopK       int      `json:"top_k"`
}

type HTTPClient struct {
	url     string
	useFreq bool
	client  *http.Client
	cache   *lru.Cache[string, *Response]
	logger  *slog.Logger
}

func NewHTTPClient(cfg config.RankerConfig, logger *slog.Logger) *HTTPClient {
	c := &HTTPClient{
		url:     cfg.URL,
		useFreq: cfg.UseFreq,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	if cfg.CacheSize > 0 {
		if cache, err := lru.New[string, *Response](cfg.CacheSize); err == nil {
			c.cache = cache
		}
	}
	return c
}

// Rank submits the query and all candidates; top_k always equals the
// candidate count so every option comes back scored. Any transport error,
// timeout, or non-2xx status is a ranker failure.
func (c *HTTPClient) Rank(ctx context.Context, query string, candidates []string) (*Response, time.Duration, error) {
	key := cacheKey(query, candidates)
	if c.cache != nil {
		if resp, ok := c.cache.Get(key); ok {
			return resp, 0, nil
		}
	}

	payload, err := json.Marshal(compareRequest{
		Query:      query,
		Candidates: candidates,
		UseFreq:    c.useFreq,
		TopK:       len(candidates),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encode ranker request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build ranker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, fmt.Errorf("ranker request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(httpResp.Body, 1<<16))
		return nil, latency, fmt.Errorf("ranker returned HTTP %d", httpResp.StatusCode)
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, latency, fmt.Errorf("decode ranker response: %w", err)
	}
	if c.cache != nil {
		c.cache.Add(key, &resp)
	}
	if c.logger != nil {
		c.logger.Debug("ranker response", "candidates", len(candidates), "results", len(resp.Top), "latency_ms", latency.Milliseconds())
	}
	return &resp, latency, nil
}

func cacheKey(query string, candidates []string) string {
	h := sha256.New()
	io.WriteString(h, query)
	h.Write([]byte{0})
	io.WriteString(h, strings.Join(candidates, "\x00"))
	return hex.EncodeToString(h.Sum(nil))
}
