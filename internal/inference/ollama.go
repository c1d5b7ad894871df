package inference

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// generateRequest is the request body for the ollama /api/generate endpoint.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Context []int          `json:"context,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// generateChunk is one line of the streaming /api/generate response.
type generateChunk struct {
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	Context   []int  `json:"context,omitempty"`
	EvalCount int    `json:"eval_count,omitempty"`
}

// tagsResponse is the response from the ollama /api/tags endpoint.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Ollama is an Engine backed by a local ollama instance. The model weights
// stay resident in the ollama server process, which is what lets the daemon
// answer in milliseconds instead of re-loading gigabytes per call.
type Ollama struct {
	// BaseURL is the ollama API base. Override in tests.
	BaseURL string

	// Model is the ollama model tag, e.g. "llama3.1:8b".
	Model string

	// KeepAlive holds the model resident between calls. Defaults to -1
	// (never unload) when empty.
	KeepAlive string

	// HTTPClient is used for all requests. Defaults to a client with no
	// overall timeout; generation is bounded by the caller's context.
	HTTPClient *http.Client

	loaded atomic.Bool
}

// NewOllama creates an Ollama engine for the given base URL and model tag.
func NewOllama(baseURL, model string) *Ollama {
	return &Ollama{
		BaseURL:    baseURL,
		Model:      model,
		HTTPClient: &http.Client{},
	}
}

func (o *Ollama) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

// Load verifies the model tag is available and issues a warm-up request so
// ollama maps the weights into memory. Called once per process; a failure
// here is terminal for the session.
func (o *Ollama) Load(ctx context.Context) error {
	ok, err := o.modelExists(ctx)
	if err != nil {
		return fmt.Errorf("checking model availability: %w", err)
	}
	if !ok {
		return fmt.Errorf("model %q not found in ollama; pull it first", o.Model)
	}

	// An empty-prompt generate loads the model without producing output.
	keepAlive := o.KeepAlive
	if keepAlive == "" {
		keepAlive = "-1"
	}
	body, err := json.Marshal(map[string]any{
		"model":      o.Model,
		"keep_alive": keepAlive,
	})
	if err != nil {
		return fmt.Errorf("marshaling warm-up request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("building warm-up request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(req)
	if err != nil {
		return fmt.Errorf("warming up model: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama warm-up returned status %d: %s", resp.StatusCode, string(respBody))
	}

	o.loaded.Store(true)
	return nil
}

// Loaded reports whether Load completed successfully.
func (o *Ollama) Loaded() bool { return o.loaded.Load() }

// Generate streams one bounded generation from ollama.
//
// Stop keywords are scanned case-insensitively over the accumulated output;
// a match cancels the stream immediately. Cancelling forfeits the
// continuation-token array, so callers that need the conversation state must
// not set Stop and rely on MaxTokens instead.
func (o *Ollama) Generate(ctx context.Context, genReq Request) (*Result, error) {
	if !o.loaded.Load() {
		return nil, fmt.Errorf("model not loaded")
	}

	opts := map[string]any{}
	if genReq.MaxTokens > 0 {
		opts["num_predict"] = genReq.MaxTokens
	}
	if genReq.Temperature > 0 {
		opts["temperature"] = genReq.Temperature
	}
	if genReq.TopK > 0 {
		opts["top_k"] = genReq.TopK
	}
	if genReq.TopP > 0 {
		opts["top_p"] = genReq.TopP
	}
	if genReq.Seed != 0 {
		opts["seed"] = genReq.Seed
	}
	body, err := json.Marshal(generateRequest{
		Model:   o.Model,
		Prompt:  genReq.Prompt,
		Stream:  true,
		Context: genReq.Context,
		Options: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling generate request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	result := &Result{Halt: HaltDone}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			// A malformed chunk aborts the stream but keeps the text so far.
			result.Halt = HaltAborted
			return result, fmt.Errorf("decoding stream chunk: %w", err)
		}

		result.Text += chunk.Response
		result.Tokens++

		if chunk.Done {
			result.Context = chunk.Context
			if chunk.EvalCount > 0 {
				result.Tokens = chunk.EvalCount
			}
			return result, nil
		}

		if matchStop(result.Text, genReq.Stop) {
			result.Halt = HaltStop
			cancel()
			return result, nil
		}
		if genReq.MaxBytes > 0 && len(result.Text) >= genReq.MaxBytes {
			result.Text = truncateBytes(result.Text, genReq.MaxBytes)
			result.Halt = HaltCap
			cancel()
			return result, nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		result.Halt = HaltAborted
		return result, fmt.Errorf("reading generate stream: %w", err)
	}
	return result, nil
}

// truncateBytes cuts s to at most max bytes, backing up to the previous
// rune boundary so the result is always valid UTF-8.
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// matchStop reports whether any stop keyword appears case-insensitively in
// the accumulated text.
func matchStop(text string, stop []string) bool {
	if len(stop) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, s := range stop {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// modelExists checks whether the configured model tag is present locally.
func (o *Ollama) modelExists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("building tags request: %w", err)
	}

	client := o.client()
	if client.Timeout == 0 {
		shortCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		req = req.WithContext(shortCtx)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking ollama models: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("ollama /api/tags returned status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("decoding ollama tags: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == o.Model {
			return true, nil
		}
	}
	return false, nil
}
