package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kejahunt/keja-api/internal/config"
)

func testClient(t *testing.T, reply string, status int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status == http.StatusOK {
			fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, reply)
		} else {
			fmt.Fprint(w, `{"error":"boom"}`)
		}
	}))
	t.Cleanup(srv.Close)

	return NewClient(config.AIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	})
}

func TestEnhanceDescription(t *testing.T) {
	client := testClient(t, "  A bright two-bedroom in Kilimani.\n", http.StatusOK)

	text, err := client.EnhanceDescription(context.Background(), "2BR Kilimani", "nice house")
	require.NoError(t, err)
	assert.Equal(t, "A bright two-bedroom in Kilimani.", text)
}

func TestSuggestTitle_StripsQuotes(t *testing.T) {
	client := testClient(t, `"Spacious 3BR Maisonette in Karen"`, http.StatusOK)

	title, err := client.SuggestTitle(context.Background(), "big house in karen")
	require.NoError(t, err)
	assert.Equal(t, "Spacious 3BR Maisonette in Karen", title)
}

func TestGenerate_ServerErrorPropagates(t *testing.T) {
	client := testClient(t, "", http.StatusInternalServerError)

	_, err := client.EnhanceDescription(context.Background(), "t", "d")
	assert.Error(t, err)
}

func TestScanListingImage_ParsesFencedJSON(t *testing.T) {
	client := testClient(t, "```json\n{\"flagged\": true, \"reason\": \"stock photo watermark\"}\n```", http.StatusOK)

	result, err := client.ScanListingImage(context.Background(), "https://cdn.test/x.jpg")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Flagged)
	assert.Equal(t, "stock photo watermark", result.Reason)
}

func TestScanListingImage_UnparseableYieldsAbsentResult(t *testing.T) {
	client := testClient(t, "I cannot assess this image.", http.StatusOK)

	result, err := client.ScanListingImage(context.Background(), "https://cdn.test/x.jpg")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
