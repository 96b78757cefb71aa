// Package websearch answers questions with live web results through the
// Mistral agents API.
//
// Each query creates a short-lived helper agent with the built-in web_search
// tool, starts a conversation with it, polls until the conversation
// completes, and extracts the answer plus any cited sources. The helper
// agent is deleted afterwards on a best-effort basis.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	voiceagent "github.com/mbaskaran/voiceagent"
)

const (
	// DefaultBaseURL is the Mistral API endpoint.
	DefaultBaseURL = "https://api.mistral.ai"

	// searchModel is the model the helper agent runs on.
	searchModel = "mistral-medium-2505"

	defaultPollInterval = 500 * time.Millisecond
	defaultPollTimeout  = 60 * time.Second
	defaultCacheTTL     = 10 * time.Minute
)

// Client talks to the Mistral agents API. Construct with New.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	logger       *voiceagent.Logger
	cache        Cache
	cacheTTL     time.Duration
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger attaches a structured logger.
func WithLogger(l *voiceagent.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCache enables result caching with the given TTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithPollInterval adjusts how often conversation status is checked.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// New creates a websearch client. apiKey must be a Mistral API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		cacheTTL:     defaultCacheTTL,
		pollInterval: defaultPollInterval,
		pollTimeout:  defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is a completed web search.
type Result struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations,omitempty"`
}

// Citation is a source the answer references.
type Citation struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// String renders the result as the plain text handed to the model.
func (r Result) String() string {
	if len(r.Citations) == 0 {
		return r.Answer
	}
	var b strings.Builder
	b.WriteString(r.Answer)
	b.WriteString("\n\nSources:")
	for _, c := range r.Citations {
		b.WriteString("\n- ")
		if c.Title != "" {
			b.WriteString(c.Title)
			if c.URL != "" {
				b.WriteString(" (")
				b.WriteString(c.URL)
				b.WriteString(")")
			}
		} else {
			b.WriteString(c.URL)
		}
	}
	return b.String()
}

type agentRequest struct {
	Model          string         `json:"model"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Instructions   string         `json:"instructions,omitempty"`
	Tools          []agentTool    `json:"tools"`
	CompletionArgs map[string]any `json:"completion_args,omitempty"`
}

type agentTool struct {
	Type string `json:"type"`
}

type agentResponse struct {
	ID string `json:"id"`
}

type conversationRequest struct {
	AgentID string `json:"agent_id"`
	Inputs  string `json:"inputs"`
}

type conversationResponse struct {
	ConversationID string               `json:"conversation_id"`
	ID             string               `json:"id"`
	Status         string               `json:"status"`
	Outputs        []conversationOutput `json:"outputs"`
	Entries        []conversationOutput `json:"entries"`
}

type conversationOutput struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentChunk struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Search runs a web search and returns the answer with citations.
func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, fmt.Errorf("websearch: empty query")
	}

	if c.cache != nil {
		if cached, ok := c.cacheGet(ctx, query); ok {
			c.logInfo("websearch_cache_hit", map[string]any{"query": query})
			return cached, nil
		}
	}

	agentID, err := c.createAgent(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("websearch: create agent: %w", err)
	}
	defer c.deleteAgent(agentID)

	convID, err := c.startConversation(ctx, agentID, query)
	if err != nil {
		return Result{}, fmt.Errorf("websearch: start conversation: %w", err)
	}

	conv, err := c.awaitConversation(ctx, convID)
	if err != nil {
		return Result{}, fmt.Errorf("websearch: %w", err)
	}

	result := extractResult(conv)
	if result.Answer == "" {
		return Result{}, fmt.Errorf("websearch: conversation %s produced no answer", convID)
	}

	if c.cache != nil {
		c.cacheSet(ctx, query, result)
	}
	c.logInfo("websearch_completed", map[string]any{
		"query":     query,
		"citations": len(result.Citations),
	})
	return result, nil
}

func (c *Client) createAgent(ctx context.Context) (string, error) {
	req := agentRequest{
		Model:        searchModel,
		Name:         "websearch-helper",
		Description:  "Ephemeral agent that answers a single question using web search.",
		Instructions: "You have the ability to perform web searches to find up-to-date information. Answer concisely and cite sources.",
		Tools:        []agentTool{{Type: "web_search"}},
		CompletionArgs: map[string]any{
			"temperature": 0.3,
			"top_p":       0.95,
		},
	}
	var resp agentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/agents", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("agent response missing id")
	}
	return resp.ID, nil
}

func (c *Client) startConversation(ctx context.Context, agentID, query string) (string, error) {
	var resp conversationResponse
	if err := c.do(ctx, http.MethodPost, "/v1/conversations", conversationRequest{
		AgentID: agentID,
		Inputs:  query,
	}, &resp); err != nil {
		return "", err
	}
	id := resp.ConversationID
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		return "", fmt.Errorf("conversation response missing id")
	}
	return id, nil
}

// awaitConversation polls until the conversation reaches a terminal status.
func (c *Client) awaitConversation(ctx context.Context, convID string) (conversationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var conv conversationResponse
		if err := c.do(ctx, http.MethodGet, "/v1/conversations/"+convID, nil, &conv); err != nil {
			return conversationResponse{}, fmt.Errorf("poll conversation: %w", err)
		}
		switch conv.Status {
		case "completed", "":
			// Some responses carry outputs without an explicit status.
			if len(conv.outputs()) > 0 {
				return conv, nil
			}
		case "failed", "error", "cancelled":
			return conversationResponse{}, fmt.Errorf("conversation %s ended with status %q", convID, conv.Status)
		}

		select {
		case <-ctx.Done():
			return conversationResponse{}, fmt.Errorf("conversation %s did not complete: %w", convID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// deleteAgent removes the helper agent. Failures are logged, never returned:
// a leaked agent must not fail a search that already has its answer.
func (c *Client) deleteAgent(agentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.do(ctx, http.MethodDelete, "/v1/agents/"+agentID, nil, nil); err != nil {
		c.logWarn("websearch_agent_delete_failed", map[string]any{
			"agent_id": agentID,
			"error":    err.Error(),
		})
	}
}

func (conv conversationResponse) outputs() []conversationOutput {
	if len(conv.Outputs) > 0 {
		return conv.Outputs
	}
	return conv.Entries
}

// extractResult walks conversation outputs collecting assistant text and
// tool_reference citations.
func extractResult(conv conversationResponse) Result {
	var result Result
	var text strings.Builder
	seen := map[string]bool{}

	for _, out := range conv.outputs() {
		if out.Type != "" && out.Type != "message.output" && out.Type != "message" {
			continue
		}
		if out.Role != "" && out.Role != "assistant" {
			continue
		}

		// Content is either a bare string or a list of typed chunks.
		var s string
		if err := json.Unmarshal(out.Content, &s); err == nil {
			text.WriteString(s)
			continue
		}
		var chunks []contentChunk
		if err := json.Unmarshal(out.Content, &chunks); err != nil {
			continue
		}
		for _, ch := range chunks {
			switch ch.Type {
			case "text", "":
				text.WriteString(ch.Text)
			case "tool_reference":
				if ch.URL == "" && ch.Title == "" {
					continue
				}
				key := ch.URL + "|" + ch.Title
				if seen[key] {
					continue
				}
				seen[key] = true
				result.Citations = append(result.Citations, Citation{Title: ch.Title, URL: ch.URL})
			}
		}
	}

	result.Answer = strings.TrimSpace(text.String())
	return result
}

// do performs one JSON round trip against the API.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) cacheGet(ctx context.Context, query string) (Result, bool) {
	raw, err := c.cache.Get(ctx, cacheKey(query))
	if err != nil || raw == "" {
		return Result{}, false
	}
	var r Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Result{}, false
	}
	return r, true
}

func (c *Client) cacheSet(ctx context.Context, query string, r Result) {
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(query), string(raw), c.cacheTTL); err != nil {
		c.logWarn("websearch_cache_set_failed", map[string]any{"error": err.Error()})
	}
}

func cacheKey(query string) string {
	return "websearch:" + strings.ToLower(strings.TrimSpace(query))
}

func (c *Client) logInfo(event string, fields map[string]any) {
	if c.logger != nil {
		c.logger.Info(event, fields)
	}
}

func (c *Client) logWarn(event string, fields map[string]any) {
	if c.logger != nil {
		c.logger.Warn(event, fields)
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

// Tool exposes the client as a voiceagent function tool named "search_web".
// The handler never returns an error: failures become a plain sentence the
// model can relay to the user.
func (c *Client) Tool() voiceagent.Tool {
	return voiceagent.NewTool("search_web", "Used to search the web for up-to-date information.",
		voiceagent.ObjectSchema(map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query.",
			},
		}, "query"),
		func(ctx context.Context, args searchArgs) (string, error) {
			result, err := c.Search(ctx, args.Query)
			if err != nil {
				c.logWarn("websearch_failed", map[string]any{"error": err.Error()})
				return "Web search failed: " + err.Error(), nil
			}
			return result.String(), nil
		},
	)
}
