package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataRef = "data:image/png;base64,aW1hZ2U="

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGeminiClient(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})
	require.NoError(t, err)
	return client
}

func TestNewGeminiClientRequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(GeminiConfig{})
	assert.Error(t, err)
}

func TestGenerateSuccess(t *testing.T) {
	var captured geminiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		resp := geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{Parts: []geminiPart{
					{Text: "here is your image"},
					{InlineData: &geminiInlineData{MimeType: "image/png", Data: "Z2VuZXJhdGVk"}},
				}},
			}},
			ModelVersion: "test-model-001",
		}
		json.NewEncoder(w).Encode(resp)
	})

	result, err := client.Generate(context.Background(), &Request{
		BaseImageRef:       testDataRef,
		AncillaryImageRefs: []string{testDataRef},
		Instruction:        "put the jacket on the model",
	})
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,Z2VuZXJhdGVk", result.ImageRef)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, "test-model-001", result.Model)

	// Base image, garment image, then the instruction text.
	require.Len(t, captured.Contents, 1)
	parts := captured.Contents[0].Parts
	require.Len(t, parts, 3)
	assert.NotNil(t, parts[0].InlineData)
	assert.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "put the jacket on the model", parts[2].Text)
}

func TestGenerateWithoutBaseImage(t *testing.T) {
	var captured geminiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{Parts: []geminiPart{
					{InlineData: &geminiInlineData{MimeType: "image/png", Data: "YmFzZQ=="}},
				}},
			}},
		})
	})

	_, err := client.Generate(context.Background(), &Request{
		AncillaryImageRefs: []string{testDataRef},
		Instruction:        "generate a base model",
	})
	require.NoError(t, err)

	parts := captured.Contents[0].Parts
	require.Len(t, parts, 2, "no base-image part when the base ref is empty")
}

func TestGenerateTextOnly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{Parts: []geminiPart{
					{Text: "I cannot generate that image"},
				}},
			}},
		})
	})

	_, err := client.Generate(context.Background(), &Request{Instruction: "x"})
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, FailureTextOnly, kind)
}

func TestGenerateSafetyBlocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{
			PromptFeedback: &geminiPromptFeedback{BlockReason: "SAFETY"},
		})
	})

	_, err := client.Generate(context.Background(), &Request{Instruction: "x"})
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, FailureSafetyBlocked, kind)
}

func TestGenerateCandidateFinishReasonSafety(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{FinishReason: "SAFETY"}},
		})
	})

	_, err := client.Generate(context.Background(), &Request{Instruction: "x"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, FailureSafetyBlocked, kind)
}

func TestGenerateNoCandidate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	})

	_, err := client.Generate(context.Background(), &Request{Instruction: "x"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, FailureNoCandidate, kind)
}

func TestGenerateTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), &Request{Instruction: "x"})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, kind)
}

func TestGenerateRejectsNonDataRef(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be reached for an invalid reference")
	})

	_, err := client.Generate(context.Background(), &Request{
		BaseImageRef: "https://example.com/image.png",
		Instruction:  "x",
	})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, FailureTransport, kind)
}

func TestParseDataRef(t *testing.T) {
	inline, err := parseDataRef("data:image/jpeg;base64,cGF5bG9hZA==")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", inline.MimeType)
	assert.Equal(t, "cGF5bG9hZA==", inline.Data)

	_, err = parseDataRef("data:image/jpeg")
	assert.Error(t, err)
}
