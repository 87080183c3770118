package tools

import (
	"encoding/json"

	"github.com/xint-dev/xint/pkg/mcp"
)

var descriptors = []mcp.ToolSchema{
	{
		Name:        string(Search),
		Description: "Search recent tweets on X/Twitter with advanced filters",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query"},
				"limit": {"type": "number", "description": "Max results (default: 15)"},
				"since": {"type": "string", "description": "Time filter: 1h, 1d, 7d"},
				"sort": {"type": "string", "enum": ["likes", "retweets", "recent"], "description": "Sort order"}
			},
			"required": ["query"]
		}`),
	},
	{
		Name:        string(Profile),
		Description: "Get recent tweets from a specific X/Twitter user",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"username": {"type": "string", "description": "Twitter username (without @)"},
				"count": {"type": "number", "description": "Number of tweets (default: 20)"}
			},
			"required": ["username"]
		}`),
	},
	{
		Name:        string(Thread),
		Description: "Get full conversation thread from a tweet",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tweet_id": {"type": "string", "description": "Tweet ID or URL"},
				"pages": {"type": "number", "description": "Pages to fetch (default: 2)"}
			},
			"required": ["tweet_id"]
		}`),
	},
	{
		Name:        string(Tweet),
		Description: "Get a single tweet by ID",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tweet_id": {"type": "string", "description": "Tweet ID or URL"}
			},
			"required": ["tweet_id"]
		}`),
	},
	{
		Name:        string(Trends),
		Description: "Get trending topics on X",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"location": {"type": "string", "description": "Location or WOEID (default: worldwide)"},
				"limit": {"type": "number", "description": "Number of trends (default: 20)"}
			}
		}`),
	},
	{
		Name:        string(XSearch),
		Description: "Search X using xAI's Grok x-search for AI-powered results",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query"},
				"limit": {"type": "number", "description": "Max results (default: 10)"}
			},
			"required": ["query"]
		}`),
	},
	{
		Name:        string(CollectionsList),
		Description: "List all xAI Collections knowledge base collections",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		Name:        string(Analyze),
		Description: "Analyze tweets or answer questions using Grok AI",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Question or analysis request"},
				"model": {"type": "string", "description": "Grok model (grok-3-mini, grok-3)"}
			},
			"required": ["query"]
		}`),
	},
	{
		Name:        string(Article),
		Description: "Fetch and extract content from a URL article. Also supports X tweet URLs - extracts linked article automatically. Use ai_prompt to analyze with Grok.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"url": {"type": "string", "description": "Article URL or X tweet URL to fetch"},
				"full": {"type": "boolean", "description": "Fetch full content (default: false)"},
				"ai_prompt": {"type": "string", "description": "Analyze article with Grok AI - ask a question about the content"}
			},
			"required": ["url"]
		}`),
	},
	{
		Name:        string(CollectionsSearch),
		Description: "Search within an xAI Collections knowledge base",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"collection_id": {"type": "string", "description": "Collection ID to search in"},
				"query": {"type": "string", "description": "Search query"},
				"limit": {"type": "number", "description": "Max results (default: 5)"}
			},
			"required": ["collection_id", "query"]
		}`),
	},
	{
		Name:        string(Bookmarks),
		Description: "Get your bookmarked tweets (requires OAuth)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Max bookmarks (default: 20)"},
				"since": {"type": "string", "description": "Filter by recency: 1h, 1d, 7d"}
			}
		}`),
	},
	{
		Name:        string(PackageCreate),
		Description: "Create an agent memory package ingest job (v1 draft contract)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Human-readable package name"},
				"topic_query": {"type": "string", "description": "Topic query used for ingest and refresh"},
				"sources": {
					"type": "array",
					"items": {"type": "string", "enum": ["x_api_v2", "xai_search", "web_article"]},
					"description": "Data sources to ingest"
				},
				"time_window": {
					"type": "object",
					"properties": {
						"from": {"type": "string", "format": "date-time"},
						"to": {"type": "string", "format": "date-time"}
					},
					"required": ["from", "to"]
				},
				"policy": {"type": "string", "enum": ["private", "shared_candidate"]},
				"analysis_profile": {"type": "string", "enum": ["summary", "analyst", "forensic"]}
			},
			"required": ["name", "topic_query", "sources", "time_window", "policy", "analysis_profile"]
		}`),
	},
	{
		Name:        string(PackageStatus),
		Description: "Get package metadata and freshness (v1 draft contract)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"package_id": {"type": "string", "description": "Package identifier (pkg_*)"}
			},
			"required": ["package_id"]
		}`),
	},
	{
		Name:        string(PackageQuery),
		Description: "Query one or more packages and return claims with citations (v1 draft contract)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Question to ask over package memory"},
				"package_ids": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Package IDs included in retrieval scope"
				},
				"max_claims": {"type": "number", "description": "Maximum number of claims (default: 10)"},
				"require_citations": {"type": "boolean", "description": "Require citations in response (default: true)"}
			},
			"required": ["query", "package_ids"]
		}`),
	},
	{
		Name:        string(PackageRefresh),
		Description: "Trigger package refresh and create a new snapshot (v1 draft contract)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"package_id": {"type": "string", "description": "Package identifier"},
				"reason": {"type": "string", "enum": ["ttl", "manual", "event"]}
			},
			"required": ["package_id", "reason"]
		}`),
	},
	{
		Name:        string(PackageSearch),
		Description: "Search private and shared package catalog (v1 draft contract)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query for package catalog"},
				"limit": {"type": "number", "description": "Max packages to return (default: 20)"}
			},
			"required": ["query"]
		}`),
	},
	{
		Name:        string(PackagePublish),
		Description: "Publish a package snapshot to shared catalog (v1 draft contract)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"package_id": {"type": "string", "description": "Package identifier"},
				"snapshot_version": {"type": "number", "description": "Snapshot version to publish"}
			},
			"required": ["package_id", "snapshot_version"]
		}`),
	},
	{
		Name:        string(CacheClear),
		Description: "Clear the xint search cache",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		Name:        string(Watch),
		Description: "Monitor X in real-time with polling. Returns new tweets since last check.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query to monitor"},
				"limit": {"type": "number", "description": "Max tweets per check (default: 10)"},
				"since": {"type": "string", "description": "Time window: 1h, 1d (default: 1h)"},
				"webhook": {"type": "string", "description": "HTTPS URL notified with new tweets (http only for localhost)"}
			},
			"required": ["query"]
		}`),
	},
	{
		Name:        string(Diff),
		Description: "Track follower/following changes for a user",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"username": {"type": "string", "description": "Twitter username to track"},
				"following": {"type": "boolean", "description": "Track following instead of followers (default: false)"}
			},
			"required": ["username"]
		}`),
	},
	{
		Name:        string(Report),
		Description: "Generate an AI-powered intelligence report on a topic",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"topic": {"type": "string", "description": "Report topic or query"},
				"sentiment": {"type": "boolean", "description": "Include sentiment analysis (default: false)"},
				"model": {"type": "string", "description": "Grok model (default: grok-3-mini)"},
				"pages": {"type": "number", "description": "Search pages (default: 2)"}
			},
			"required": ["topic"]
		}`),
	},
	{
		Name:        string(Sentiment),
		Description: "Analyze sentiment of tweets",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tweets": {"type": "array", "items": {}, "description": "Array of tweets to analyze"}
			},
			"required": ["tweets"]
		}`),
	},
	{
		Name:        string(Costs),
		Description: "Get API cost tracking information",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"period": {"type": "string", "enum": ["today", "week", "month", "all"], "description": "Time period (default: today)"}
			}
		}`),
	},
}

var descriptorIndex = func() map[Name]int {
	idx := make(map[Name]int, len(descriptors))
	for i, d := range descriptors {
		idx[Name(d.Name)] = i
	}
	return idx
}()

// Descriptors returns the tool table in catalog order
func Descriptors() []mcp.ToolSchema {
	out := make([]mcp.ToolSchema, len(descriptors))
	copy(out, descriptors)
	return out
}

// Descriptor returns the descriptor of n
func Descriptor(n Name) (mcp.ToolSchema, bool) {
	i, ok := descriptorIndex[n]
	if !ok {
		return mcp.ToolSchema{}, false
	}
	return descriptors[i], true
}
