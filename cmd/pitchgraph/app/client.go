package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallnest/pitchgraph/analysis"
	"github.com/smallnest/pitchgraph/rag"
	"github.com/smallnest/pitchgraph/server"
)

// ErrBackend is returned when a remote pitchgraph server cannot be reached
// or answers with an error status.
var ErrBackend = errors.New("failed to communicate with analysis backend")

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type panelResult struct {
	ID       string
	Sections map[string]string
	Coverage rag.Coverage
}

func (c *client) view(ctx context.Context, prompt string) (*server.ViewResponse, error) {
	var out server.ViewResponse
	if err := c.post(ctx, "/view", prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) panel(ctx context.Context, prompt string) (*panelResult, error) {
	var raw map[string]json.RawMessage
	if err := c.post(ctx, "/panel", prompt, &raw); err != nil {
		return nil, err
	}

	res := &panelResult{Sections: make(map[string]string, len(analysis.Roles))}
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &res.ID); err != nil {
			return nil, fmt.Errorf("%w: malformed id: %v", ErrBackend, err)
		}
	}
	if v, ok := raw["coverage"]; ok {
		if err := json.Unmarshal(v, &res.Coverage); err != nil {
			return nil, fmt.Errorf("%w: malformed coverage: %v", ErrBackend, err)
		}
	}
	for _, key := range analysis.RoleKeys() {
		var s string
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("%w: malformed %s: %v", ErrBackend, key, err)
			}
		}
		res.Sections[key] = s
	}
	return res, nil
}

func (c *client) post(ctx context.Context, path, prompt string, out any) error {
	body, err := json.Marshal(server.PromptRequest{Prompt: prompt})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Detail string `json:"detail"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) != nil || e.Detail == "" {
			e.Detail = strings.TrimSpace(string(data))
		}
		return fmt.Errorf("%w: backend responded with %d: %s", ErrBackend, resp.StatusCode, e.Detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrBackend, err)
	}
	return nil
}
