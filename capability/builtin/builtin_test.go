package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
)

func TestAdd(t *testing.T) {
	r := capability.NewRegistry()
	require.NoError(t, r.Register(Add()))

	result := r.Invoke(context.Background(), "add", map[string]any{"a": 2.0, "b": 3.0})
	require.True(t, result.Success, "unexpected error: %s", result.Error)
	data := result.Data.(map[string]any)
	assert.Equal(t, 5.0, data["result"])
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := capability.NewRegistry()
	require.NoError(t, r.Register(ReadFile(dir)))
	require.NoError(t, r.Register(WriteFile(dir)))

	ctx := context.Background()
	write := r.Invoke(ctx, "write_file", map[string]any{"path": "notes/today.txt", "content": "hello"})
	require.True(t, write.Success, "unexpected error: %s", write.Error)

	read := r.Invoke(ctx, "read_file", map[string]any{"path": "notes/today.txt"})
	require.True(t, read.Success, "unexpected error: %s", read.Error)
	data := read.Data.(map[string]any)
	assert.Equal(t, "hello", data["content"])

	// On-disk content matches what the capability reported.
	raw, err := os.ReadFile(filepath.Join(dir, "notes", "today.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))
}

func TestFilePathValidation(t *testing.T) {
	r := capability.NewRegistry()
	require.NoError(t, r.Register(ReadFile(t.TempDir())))

	result := r.Invoke(context.Background(), "read_file", map[string]any{"path": "../etc/passwd"})
	assert.False(t, result.Success)
	assert.Equal(t, capability.CodeInvalidParameter, result.Metadata["error_code"])
}

func TestFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/price", req.URL.Path)
		assert.Equal(t, "ETH", req.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"ETH","price":3120.55}`))
	}))
	defer server.Close()

	cap := FetchPrice(func(o *MarketOptions) {
		o.BaseURL = server.URL
		o.Client = server.Client()
	})
	r := capability.NewRegistry()
	require.NoError(t, r.Register(cap))

	result := r.Invoke(context.Background(), "fetch_price", map[string]any{"symbol": "ETH"})
	require.True(t, result.Success, "unexpected error: %s", result.Error)
	data := result.Data.(map[string]any)
	assert.Equal(t, 3120.55, data["price"])
}

func TestFetchTVLUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cap := FetchTVL(func(o *MarketOptions) {
		o.BaseURL = server.URL
		o.Client = server.Client()
	})
	r := capability.NewRegistry()
	require.NoError(t, r.Register(cap))

	result := r.Invoke(context.Background(), "fetch_tvl", map[string]any{"protocol": "uniswap"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "502")
}

func TestSocialFeedFilter(t *testing.T) {
	r := capability.NewRegistry()
	require.NoError(t, r.Register(SocialFeed(
		Post{Author: "a", Text: "TVL is climbing"},
		Post{Author: "b", Text: "gas fees dropping"},
	)))

	result := r.Invoke(context.Background(), "read_social_feed", map[string]any{"topic": "tvl"})
	require.True(t, result.Success)
	data := result.Data.(map[string]any)
	posts := data["posts"].([]Post)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].Author)

	// No topic returns the full feed.
	all := r.Invoke(context.Background(), "read_social_feed", map[string]any{})
	require.True(t, all.Success)
	assert.Len(t, all.Data.(map[string]any)["posts"], 2)
}
