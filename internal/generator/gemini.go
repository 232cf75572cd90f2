package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GeminiClient implements Client against the Gemini REST image API.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Gemini API request/response structures
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string                `json:"modelVersion,omitempty"`
	Error          *geminiError          `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiClient creates a new Gemini image-generation client.
func NewGeminiClient(config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := config.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &GeminiClient{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Generate implements Client.Generate. Image references must be data URIs;
// they are decoded into inline parts on the wire, and the generated image
// comes back as a data URI.
func (c *GeminiClient) Generate(ctx context.Context, req *Request) (*Result, error) {
	startTime := time.Now()

	geminiReq, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, NewFailure(FailureTransport, "marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewFailure(FailureTransport, "create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, NewFailure(FailureTransport, "send request", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewFailure(FailureTransport, "read response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, NewFailure(FailureTransport,
			fmt.Sprintf("API error (status %d): %s", httpResp.StatusCode, truncate(string(respBody), 200)), nil)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, NewFailure(FailureTransport, "parse response", err)
	}

	if geminiResp.Error != nil {
		return nil, NewFailure(FailureTransport,
			fmt.Sprintf("Gemini API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code), nil)
	}

	return c.convertResponse(&geminiResp, time.Since(startTime))
}

// Close implements Client.Close.
func (c *GeminiClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *GeminiClient) buildRequest(req *Request) (*geminiRequest, error) {
	var parts []geminiPart

	if req.BaseImageRef != "" {
		inline, err := parseDataRef(req.BaseImageRef)
		if err != nil {
			return nil, err
		}
		parts = append(parts, geminiPart{InlineData: inline})
	}

	for _, ref := range req.AncillaryImageRefs {
		inline, err := parseDataRef(ref)
		if err != nil {
			return nil, err
		}
		parts = append(parts, geminiPart{InlineData: inline})
	}

	parts = append(parts, geminiPart{Text: req.Instruction})

	return &geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}, nil
}

func (c *GeminiClient) convertResponse(resp *geminiResponse, latency time.Duration) (*Result, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, NewFailure(FailureSafetyBlocked,
				fmt.Sprintf("request blocked: %s", resp.PromptFeedback.BlockReason), nil)
		}
		return nil, NewFailure(FailureNoCandidate, "no candidates returned", nil)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "PROHIBITED_CONTENT" {
		return nil, NewFailure(FailureSafetyBlocked,
			fmt.Sprintf("candidate blocked: %s", candidate.FinishReason), nil)
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			model := resp.ModelVersion
			if model == "" {
				model = c.model
			}
			return &Result{
				ImageRef: formatDataRef(part.InlineData),
				MimeType: part.InlineData.MimeType,
				Model:    model,
				Latency:  latency,
			}, nil
		}
		if part.Text != "" {
			text = part.Text
		}
	}

	if text != "" {
		return nil, NewFailure(FailureTextOnly,
			fmt.Sprintf("service answered with text only: %s", truncate(text, 120)), nil)
	}
	return nil, NewFailure(FailureNoCandidate, "candidate contained no image data", nil)
}

// parseDataRef splits a "data:<mime>;base64,<payload>" reference into its
// wire form.
func parseDataRef(ref string) (*geminiInlineData, error) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, NewFailure(FailureTransport,
			fmt.Sprintf("image reference is not a data URI: %s", truncate(ref, 60)), nil)
	}

	rest := strings.TrimPrefix(ref, "data:")
	mime, payload, found := strings.Cut(rest, ";base64,")
	if !found || payload == "" {
		return nil, NewFailure(FailureTransport, "image reference is not base64-encoded", nil)
	}

	return &geminiInlineData{MimeType: mime, Data: payload}, nil
}

func formatDataRef(inline *geminiInlineData) string {
	return fmt.Sprintf("data:%s;base64,%s", inline.MimeType, inline.Data)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
