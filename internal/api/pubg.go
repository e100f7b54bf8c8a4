package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"clan-tracker/internal/config"
	"clan-tracker/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var (
	ErrUnavailable = errors.New("pubg api unavailable")
	ErrTransport   = errors.New("pubg api transport failure")
	ErrDecode      = errors.New("pubg api returned malformed json")
)

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pubg api error: %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnavailable
}

type PubgClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
	limiter *RateLimiter
	logger  zerolog.Logger
}

func NewPubgClient(cfg *config.Config, limiter *RateLimiter, logger zerolog.Logger) *PubgClient {
	return &PubgClient{
		apiKey:  cfg.PubgAPIKey,
		baseURL: cfg.PubgBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: limiter,
		logger:  logger,
	}
}

func (c *PubgClient) GetClan(ctx context.Context, clanID string) (*ClanDocument, error) {
	endpoint := fmt.Sprintf("%s/clans/%s", c.baseURL, url.PathEscape(clanID))
	return doRequest[ClanDocument](ctx, c, endpoint, true)
}

// GetPlayer goes through the shared limiter; the provider throttles this
// endpoint far more aggressively than the others.
func (c *PubgClient) GetPlayer(ctx context.Context, playerID string) (*PlayerDocument, error) {
	endpoint := fmt.Sprintf("%s/players/%s", c.baseURL, url.PathEscape(playerID))

	var doc *PlayerDocument
	err := c.limiter.Do(ctx, func() error {
		var err error
		doc, err = doRequest[PlayerDocument](ctx, c, endpoint, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetMatch needs no key and is not rate limited.
func (c *PubgClient) GetMatch(ctx context.Context, matchID string) (*MatchDocument, error) {
	endpoint := fmt.Sprintf("%s/matches/%s", c.baseURL, url.PathEscape(matchID))
	return doRequest[MatchDocument](ctx, c, endpoint, false)
}

// GetPlayerLifetime returns the lifetime document verbatim.
func (c *PubgClient) GetPlayerLifetime(ctx context.Context, playerID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/players/%s/seasons/lifetime?filter[gamepad]=false", c.baseURL, url.PathEscape(playerID))

	body, err := c.get(ctx, endpoint, true)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		c.logger.Warn().Str("player_id", playerID).Msg("lifetime response is not valid json")
		return nil, ErrDecode
	}
	return body, nil
}

func doRequest[T any](ctx context.Context, client *PubgClient, endpoint string, auth bool) (*T, error) {
	body, err := client.get(ctx, endpoint, auth)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		client.logger.Warn().Err(err).Str("url", endpoint).Msg("failed to decode pubg response")
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &result, nil
}

func (c *PubgClient) get(ctx context.Context, endpoint string, auth bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	release := func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", constants.PubgAcceptHeader)
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	deadline := time.Now().Add(constants.ExternalAPITimeout)
	ctxDeadline := false
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
		ctxDeadline = true
	}

	done := make(chan error, 1)
	go func() {
		done <- c.client.DoDeadline(req, resp, deadline)
	}()

	select {
	case <-ctx.Done():
		// req and resp stay owned by the in-flight call until it returns
		go func() {
			<-done
			release()
		}()
		return nil, ctx.Err()
	case err := <-done:
		defer release()

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// the client deadline is the context's, which expires at the same instant
			if ctxDeadline && errors.Is(err, fasthttp.ErrTimeout) {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			c.logger.Warn().Err(err).Str("url", endpoint).Msg("pubg request failed")
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}

		status := resp.StatusCode()
		if status < 200 || status > 299 {
			body := string(resp.Body())
			c.logger.Warn().Int("status", status).Str("body", body).Str("url", endpoint).Msg("pubg api returned non-success")
			return nil, &StatusError{StatusCode: status, Body: body}
		}

		return append([]byte(nil), resp.Body()...), nil
	}
}
