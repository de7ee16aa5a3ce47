package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"pokedex/pkg/config"
	errs "pokedex/pkg/errors"
	"pokedex/pkg/logger"
	"pokedex/pkg/ratelimit"
	"pokedex/pkg/retry"
)

// Options configures a Client. Zero values fall back to PokeAPI defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// MaxIdleConnsPerHost should match the worker pool size
	MaxIdleConnsPerHost int
	Retry               *retry.Config
	Limiter             ratelimit.Limiter
	Logger              logger.Logger
	// HTTPClient overrides the transport entirely
	HTTPClient *http.Client
}

// Client fetches PokeAPI resources through the retry policy and rate limiter
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retry      *retry.Config
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a new PokeAPI client
func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retryCfg := opts.Retry
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "pokedex-builder/1.0"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: newTransport(opts.MaxIdleConnsPerHost, log),
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    normalizeBase(opts.BaseURL),
		userAgent:  userAgent,
		retry:      retryCfg,
		limiter:    limiter,
		logger:     log,
	}
}

// NewFromConfig wires a client from the application configuration
func NewFromConfig(cfg *config.Config, log logger.Logger) *Client {
	return NewClient(Options{
		BaseURL:             cfg.API.BaseURL,
		Timeout:             cfg.API.Timeout,
		UserAgent:           cfg.API.UserAgent,
		MaxIdleConnsPerHost: cfg.Pipeline.Concurrency,
		Retry:               retry.FromConfig(cfg.Retry, log),
		Limiter:             ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute),
		Logger:              log,
	})
}

// newTransport returns an HTTP/2 capable transport with a connection pool
// sized to the number of concurrent workers
func newTransport(idlePerHost int, log logger.Logger) http.RoundTripper {
	if idlePerHost <= 0 {
		idlePerHost = 5
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   idlePerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		log.WithError(err).Warn("HTTP/2 unavailable, using HTTP/1.1")
	}
	return tr
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON fetches url and decodes the body into target. Transport errors,
// non-200 statuses and undecodable bodies are all retried.
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	return c.fetch(ctx, url, func(body []byte) error {
		if err := json.Unmarshal(body, target); err != nil {
			return errs.New(errs.ErrorTypeParsing, http.StatusOK, "failed to parse JSON: %v", err)
		}
		return nil
	})
}

// Download fetches url and returns the raw body
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := c.fetch(ctx, url, func(body []byte) error {
		data = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// fetch runs one GET per attempt under the retry policy and hands the
// 200 body to accept
func (c *Client) fetch(ctx context.Context, url string, accept func(body []byte) error) error {
	attempt := 0
	return retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		body, err := c.get(ctx, url)
		if err == nil {
			err = accept(body)
		}
		if ctx.Err() == nil {
			logger.LogFetch(c.logger, url, attempt, c.retry.MaxAttempts, err)
		}
		return err
	}, c.retry)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, image/*;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.New(errs.ErrorTypeNetwork, 0, "network error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errs.FromStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}
	return body, nil
}

// FetchPokemon fetches /pokemon/{id}
func (c *Client) FetchPokemon(ctx context.Context, id int) (*Pokemon, error) {
	var p Pokemon
	if err := c.GetJSON(ctx, PokemonURL(c.baseURL, id), &p); err != nil {
		return nil, fmt.Errorf("fetch pokemon %d: %w", id, err)
	}
	return &p, nil
}

// FetchSpecies fetches /pokemon-species/{id}
func (c *Client) FetchSpecies(ctx context.Context, id int) (*Species, error) {
	var s Species
	if err := c.GetJSON(ctx, SpeciesURL(c.baseURL, id), &s); err != nil {
		return nil, fmt.Errorf("fetch species %d: %w", id, err)
	}
	return &s, nil
}

// FetchEvolutionChain fetches the chain behind a species' evolution_chain URL
func (c *Client) FetchEvolutionChain(ctx context.Context, url string) (*EvolutionChain, error) {
	if url == "" {
		return nil, errs.New(errs.ErrorTypeNotFound, 0, "species has no evolution chain")
	}
	var chain EvolutionChain
	if err := c.GetJSON(ctx, url, &chain); err != nil {
		return nil, fmt.Errorf("fetch evolution chain: %w", err)
	}
	return &chain, nil
}
