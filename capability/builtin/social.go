package builtin

import (
	"context"
	"strings"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
)

// Post is one entry of the mocked social feed.
type Post struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

var defaultFeed = []Post{
	{Author: "chainwatcher", Text: "ETH gas fees back to normal after the weekend spike."},
	{Author: "defi_daily", Text: "TVL across lending protocols up 4% this week."},
	{Author: "protocol_dev", Text: "Shipping the v2 audit report tomorrow."},
	{Author: "marketbot", Text: "BTC consolidating, low volatility expected short term."},
}

// SocialFeed returns the "read_social_feed" capability serving a canned feed,
// optionally filtered by a case-insensitive topic substring. Pass a custom
// feed to override the default posts.
func SocialFeed(feed ...Post) capability.Capability {
	posts := feed
	if len(posts) == 0 {
		posts = defaultFeed
	}
	return capability.NewFunc(
		"read_social_feed",
		"Read recent posts from the (mocked) social feed, optionally filtered by topic.",
		[]capability.Parameter{
			{Name: "topic", Kind: capability.KindString, Description: "Optional topic filter", Required: false},
		},
		func(_ context.Context, params map[string]any) (any, error) {
			topic, _ := params["topic"].(string)
			if topic == "" {
				return map[string]any{"posts": posts}, nil
			}
			needle := strings.ToLower(topic)
			var matched []Post
			for _, p := range posts {
				if strings.Contains(strings.ToLower(p.Text), needle) {
					matched = append(matched, p)
				}
			}
			return map[string]any{"posts": matched, "topic": topic}, nil
		},
	)
}
