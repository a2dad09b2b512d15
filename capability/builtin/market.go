package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
)

// MarketOptions configure the market data capabilities.
type MarketOptions struct {
	// BaseURL is the market data API root, e.g. a price aggregator endpoint.
	BaseURL string
	// Client overrides the HTTP client (tests point it at a httptest server).
	Client *http.Client
}

func marketDefaults(optFns []func(o *MarketOptions)) MarketOptions {
	opts := MarketOptions{
		Client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

func symbolValidator(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	return nil
}

// FetchPrice returns the "fetch_price" capability querying
// <base>/price?symbol=<symbol> and returning the decoded JSON body.
func FetchPrice(optFns ...func(o *MarketOptions)) capability.Capability {
	opts := marketDefaults(optFns)
	return capability.NewFunc(
		"fetch_price",
		"Fetch the current price for an asset symbol from the market data API.",
		[]capability.Parameter{
			{Name: "symbol", Kind: capability.KindString, Description: "Asset symbol, e.g. ETH", Required: true, Validator: symbolValidator},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			symbol := params["symbol"].(string)
			return fetchJSON(ctx, opts, "/price", url.Values{"symbol": {symbol}})
		},
	)
}

// FetchTVL returns the "fetch_tvl" capability querying
// <base>/tvl?protocol=<protocol>.
func FetchTVL(optFns ...func(o *MarketOptions)) capability.Capability {
	opts := marketDefaults(optFns)
	return capability.NewFunc(
		"fetch_tvl",
		"Fetch the total value locked for a DeFi protocol from the market data API.",
		[]capability.Parameter{
			{Name: "protocol", Kind: capability.KindString, Description: "Protocol slug, e.g. uniswap", Required: true, Validator: symbolValidator},
		},
		func(ctx context.Context, params map[string]any) (any, error) {
			protocol := params["protocol"].(string)
			return fetchJSON(ctx, opts, "/tvl", url.Values{"protocol": {protocol}})
		},
	)
}

func fetchJSON(ctx context.Context, opts MarketOptions, path string, query url.Values) (any, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("market data base URL not configured")
	}
	endpoint := strings.TrimRight(opts.BaseURL, "/") + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
}
