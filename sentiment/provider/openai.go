package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// ResponsesAPI is the slice of the OpenAI client used here. *responses.ResponseService satisfies it.
type ResponsesAPI interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
}

// RetryPolicy holds per-attempt waits; the attempt count is len+1.
type RetryPolicy struct {
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	RateLimitWaits:   []time.Duration{65 * time.Second, 100 * time.Second},
	ServerErrorWaits: []time.Duration{5 * time.Second, 30 * time.Second},
}

func (p RetryPolicy) Call(ctx context.Context, api ResponsesAPI, params responses.ResponseNewParams) (*responses.Response, error) {
	maxRetries := max(len(p.RateLimitWaits), len(p.ServerErrorWaits)) + 1

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := api.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		var waits []time.Duration
		switch classify(err) {
		case failRateLimit:
			waits = p.RateLimitWaits
		case failServer:
			waits = p.ServerErrorWaits
		}
		if attempt >= len(waits) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waits[attempt]):
		}
	}
	return nil, fmt.Errorf("RetryPolicy.Call: gave up after %d attempts", maxRetries)
}

type failure int

const (
	failPermanent failure = iota
	failRateLimit
	failServer
)

// classify prefers the API status code and falls back to the message text
// for errors raised below the SDK (proxies, transports).
func classify(err error) failure {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return failRateLimit
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return failServer
		default:
			return failPermanent
		}
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"429", "rate limit", "too many requests"} {
		if strings.Contains(msg, s) {
			return failRateLimit
		}
	}
	for _, s := range []string{"500", "502", "503", "internal server error", "server_error"} {
		if strings.Contains(msg, s) {
			return failServer
		}
	}
	return failPermanent
}

// GenerateSchema reflects T into a strict structured-output schema.
func GenerateSchema[T any]() map[string]any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	raw, err := json.Marshal(r.Reflect(v))
	if err != nil {
		panic(fmt.Errorf("GenerateSchema: marshal: %w", err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(fmt.Errorf("GenerateSchema: unmarshal: %w", err))
	}
	closeSchema(m)
	return m
}

// closeSchema walks objects and array items, marking every object closed
// with all of its properties required. Strict mode rejects anything else.
func closeSchema(node map[string]any) {
	props, _ := node["properties"].(map[string]any)
	if node["type"] == "object" {
		node["additionalProperties"] = false
		if len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			sort.Strings(required)
			node["required"] = required
		}
	}
	for _, p := range props {
		if child, ok := p.(map[string]any); ok {
			closeSchema(child)
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		closeSchema(items)
	}
}
