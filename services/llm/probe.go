// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ProbeCacheTTL is how long a model presence answer stays valid. Pulling
// the tag list on every message would hammer Ollama for an answer that
// changes only when an operator pulls or removes a model.
const ProbeCacheTTL = 5 * time.Minute

// probeTimeout bounds a single availability check.
const probeTimeout = 3 * time.Second

// Prober answers two questions about the local backend: is it up at all,
// and does it have a given model pulled. Any failure to answer counts as
// "unavailable"; the orchestrator degrades rather than guesses.
//
// Presence answers are cached with a TTL, and concurrent lookups for the
// same backend collapse into one request via singleflight.
type Prober struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group

	mu        sync.Mutex
	models    map[string]bool
	fetchedAt time.Time
}

// NewProber creates a prober for the given Ollama base URL.
func NewProber(baseURL string) *Prober {
	return &Prober{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: probeTimeout},
	}
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// IsUp reports whether the local backend answers at all. Never errors;
// an unreachable backend is simply not up.
func (p *Prober) IsUp(ctx context.Context) bool {
	_, err := p.fetchTags(ctx)
	return err == nil
}

// IsModelPresent reports whether the named model is pulled on the local
// backend. Served from the TTL cache when fresh.
func (p *Prober) IsModelPresent(ctx context.Context, model string) bool {
	p.mu.Lock()
	if p.models != nil && time.Since(p.fetchedAt) < ProbeCacheTTL {
		present := p.models[model]
		p.mu.Unlock()
		return present
	}
	p.mu.Unlock()

	models, err := p.fetchTags(ctx)
	if err != nil {
		slog.Debug("Model presence probe failed", "model", model, "error", err)
		return false
	}
	return models[model]
}

// Invalidate drops the cached tag list. Called after operator-driven model
// changes so the next probe refetches.
func (p *Prober) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.models = nil
}

// fetchTags pulls /api/tags, deduplicated across goroutines, and refreshes
// the cache on success.
func (p *Prober) fetchTags(ctx context.Context) (map[string]bool, error) {
	v, err, _ := p.group.Do("tags", func() (any, error) {
		reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet,
			p.baseURL+"/api/tags", nil)
		if err != nil {
			return nil, err
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, classifyTransportError(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("local provider returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		var tags ollamaTagsResponse
		if err := json.Unmarshal(body, &tags); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}

		models := make(map[string]bool, len(tags.Models))
		for _, m := range tags.Models {
			models[m.Name] = true
		}

		p.mu.Lock()
		p.models = models
		p.fetchedAt = time.Now()
		p.mu.Unlock()
		return models, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]bool), nil
}
