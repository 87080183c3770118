package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xint-dev/xint/internal/budget"
	"github.com/xint-dev/xint/internal/packageapi"
	"github.com/xint-dev/xint/internal/template"
	"github.com/xint-dev/xint/internal/tools"
)

type toolHandler func(ctx context.Context, args arguments) (string, error)

// toolTemplates holds the text bodies of tools that answer locally
var toolTemplates = map[tools.Name]string{
	tools.Search:            `Search: {{ .Args.query }} (limit: {{ .Args.limit }})`,
	tools.Profile:           `Profile: @{{ .Args.username }}`,
	tools.Thread:            `Thread for tweet: {{ .Args.tweet_id }}`,
	tools.Tweet:             `Tweet: {{ .Args.tweet_id }}`,
	tools.Trends:            `Trends for: {{ .Args.location }}`,
	tools.XSearch:           `X-Search: {{ .Args.query }}`,
	tools.Analyze:           `Analysis: {{ .Args.query }}`,
	tools.Article:           `Article: {{ .Args.url }}`,
	tools.CollectionsSearch: `Collections search in {{ .Args.collection_id }}: {{ .Args.query }}`,
	tools.Watch: `Watch: {{ .Args.query }} (use CLI for real-time monitoring)
{{- with .Args.webhook }}
Webhook: {{ . }}{{ end }}`,
	tools.Diff:   `Diff tracking for @{{ .Args.username }}`,
	tools.Report: `Report on: {{ .Args.topic }} (requires XAI_API_KEY)`,
	tools.Costs: `Costs for period: {{ .Args.summary.Period }}
Total: {{ usd .Args.summary.TotalUSD }} across {{ .Args.summary.Calls }} calls
Today: {{ usd .Args.summary.Today.Spent }} of {{ usd .Args.summary.Today.Limit }} ({{ usd .Args.summary.Today.Remaining }} remaining)
{{- range $op, $t := .Args.summary.ByOperation }}
  {{ $op }}: {{ $t.Calls }} calls, {{ usd $t.CostUSD }}
{{- end }}`,
}

const (
	textCollectionsList = "Collections: []"
	textBookmarks       = "Bookmarks: OAuth required"
	textCacheCleared    = "Cache cleared"
	textSentiment       = "Sentiment analysis (requires XAI_API_KEY)"
)

const (
	defaultSearchLimit        = 15
	defaultPackageSearchLimit = 20
	defaultMaxClaims          = 10
)

func (s *Server) toolHandlers() map[tools.Name]toolHandler {
	return map[tools.Name]toolHandler{
		tools.Search:            s.handleSearch,
		tools.Profile:           s.requireAndRender(tools.Profile, "username"),
		tools.Thread:            s.requireAndRender(tools.Thread, "tweet_id"),
		tools.Tweet:             s.requireAndRender(tools.Tweet, "tweet_id"),
		tools.Trends:            s.handleTrends,
		tools.XSearch:           s.requireAndRender(tools.XSearch, "query"),
		tools.CollectionsList:   staticText(textCollectionsList),
		tools.CollectionsSearch: s.requireAndRender(tools.CollectionsSearch, "collection_id", "query"),
		tools.Analyze:           s.requireAndRender(tools.Analyze, "query"),
		tools.Article:           s.requireAndRender(tools.Article, "url"),
		tools.Bookmarks:         staticText(textBookmarks),
		tools.PackageCreate:     s.handlePackageCreate,
		tools.PackageStatus:     s.handlePackageStatus,
		tools.PackageQuery:      s.handlePackageQuery,
		tools.PackageRefresh:    s.handlePackageRefresh,
		tools.PackageSearch:     s.handlePackageSearch,
		tools.PackagePublish:    s.handlePackagePublish,
		tools.CacheClear:        staticText(textCacheCleared),
		tools.Watch:             s.handleWatch,
		tools.Diff:              s.requireAndRender(tools.Diff, "username"),
		tools.Report:            s.requireAndRender(tools.Report, "topic"),
		tools.Sentiment:         staticText(textSentiment),
		tools.Costs:             s.handleCosts,
	}
}

func staticText(text string) toolHandler {
	return func(context.Context, arguments) (string, error) {
		return text, nil
	}
}

func (s *Server) render(tool tools.Name, ctx *template.Context) (string, error) {
	return s.renderer.Render(toolTemplates[tool], ctx)
}

// requireAndRender reads the required string fields in order and renders
// the tool template with them
func (s *Server) requireAndRender(tool tools.Name, fields ...string) toolHandler {
	return func(_ context.Context, args arguments) (string, error) {
		tctx := template.NewContext(tool.String())
		for _, f := range fields {
			v, err := args.Require(f)
			if err != nil {
				return "", err
			}
			tctx.Set(f, v)
		}
		return s.render(tool, tctx)
	}
}

func (s *Server) handleSearch(_ context.Context, args arguments) (string, error) {
	query, err := args.Require("query")
	if err != nil {
		return "", err
	}
	tctx := template.NewContext(tools.Search.String()).
		Set("query", query).
		Set("limit", args.UintOr("limit", defaultSearchLimit))
	return s.render(tools.Search, tctx)
}

func (s *Server) handleTrends(_ context.Context, args arguments) (string, error) {
	tctx := template.NewContext(tools.Trends.String()).
		Set("location", args.StringOr("location", "worldwide"))
	return s.render(tools.Trends, tctx)
}

// handleWatch admits the optional webhook before echoing it back
func (s *Server) handleWatch(_ context.Context, args arguments) (string, error) {
	query, err := args.Require("query")
	if err != nil {
		return "", err
	}
	tctx := template.NewContext(tools.Watch.String()).Set("query", query)
	if raw, ok := args.String("webhook"); ok {
		webhookURL, err := s.webhooks.Validate(raw)
		if err != nil {
			return "", err
		}
		tctx.Set("webhook", webhookURL)
	}
	return s.render(tools.Watch, tctx)
}

func (s *Server) handleCosts(ctx context.Context, args arguments) (string, error) {
	if s.tracker == nil {
		return "", errors.New("budget tracker is not configured")
	}
	period, err := budget.ParsePeriod(args.StringOr("period", string(budget.PeriodToday)))
	if err != nil {
		return "", err
	}
	summary, err := s.tracker.Summary(ctx, period)
	if err != nil {
		return "", fmt.Errorf("load cost summary: %w", err)
	}
	tctx := template.NewContext(tools.Costs.String()).Set("summary", summary)
	return s.render(tools.Costs, tctx)
}

func (s *Server) handlePackageCreate(ctx context.Context, args arguments) (string, error) {
	timeWindow, ok := args.Raw("time_window")
	if !ok {
		now := s.now().UTC()
		timeWindow, _ = json.Marshal(map[string]string{
			"from": now.Add(-24 * time.Hour).Format(time.RFC3339),
			"to":   now.Format(time.RFC3339),
		})
	}
	return prettyJSON(s.packages.Create(ctx, packageapi.CreateRequest{
		Name:            args.StringOr("name", ""),
		TopicQuery:      args.StringOr("topic_query", ""),
		Sources:         args.Array("sources"),
		TimeWindow:      timeWindow,
		Policy:          args.StringOr("policy", "private"),
		AnalysisProfile: args.StringOr("analysis_profile", "summary"),
	}))
}

func (s *Server) handlePackageStatus(ctx context.Context, args arguments) (string, error) {
	id, err := args.Require("package_id")
	if err != nil {
		return "", err
	}
	return prettyJSON(s.packages.Status(ctx, id))
}

func (s *Server) handlePackageQuery(ctx context.Context, args arguments) (string, error) {
	query, err := args.Require("query")
	if err != nil {
		return "", err
	}
	ids := args.Array("package_ids")
	if len(ids) == 0 {
		return "", missing("package_ids")
	}
	return prettyJSON(s.packages.Query(ctx, packageapi.QueryRequest{
		Query:            query,
		PackageIDs:       ids,
		MaxClaims:        args.UintOr("max_claims", defaultMaxClaims),
		RequireCitations: args.BoolOr("require_citations", true),
	}))
}

func (s *Server) handlePackageRefresh(ctx context.Context, args arguments) (string, error) {
	id, err := args.Require("package_id")
	if err != nil {
		return "", err
	}
	reason, err := args.Require("reason")
	if err != nil {
		return "", err
	}
	return prettyJSON(s.packages.Refresh(ctx, id, reason))
}

func (s *Server) handlePackageSearch(ctx context.Context, args arguments) (string, error) {
	query, err := args.Require("query")
	if err != nil {
		return "", err
	}
	return prettyJSON(s.packages.Search(ctx, query, args.UintOr("limit", defaultPackageSearchLimit)))
}

func (s *Server) handlePackagePublish(ctx context.Context, args arguments) (string, error) {
	id, err := args.Require("package_id")
	if err != nil {
		return "", err
	}
	version, ok := args.Uint("snapshot_version")
	if !ok {
		return "", missing("snapshot_version")
	}
	return prettyJSON(s.packages.Publish(ctx, id, version))
}

// prettyJSON indents a package API result with two spaces
func prettyJSON(raw json.RawMessage, err error) (string, error) {
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw), nil
	}
	return buf.String(), nil
}
