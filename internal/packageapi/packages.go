package packageapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CreateRequest is the body of POST /packages
type CreateRequest struct {
	Name            string          `json:"name"`
	TopicQuery      string          `json:"topic_query"`
	Sources         []any           `json:"sources"`
	TimeWindow      json.RawMessage `json:"time_window"`
	Policy          string          `json:"policy"`
	AnalysisProfile string          `json:"analysis_profile"`
}

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Query            string `json:"query"`
	PackageIDs       []any  `json:"package_ids"`
	MaxClaims        uint64 `json:"max_claims"`
	RequireCitations bool   `json:"require_citations"`
}

// Create registers a new package
func (c *Client) Create(ctx context.Context, req CreateRequest) (json.RawMessage, error) {
	if req.Sources == nil {
		req.Sources = []any{}
	}
	return c.Call(ctx, http.MethodPost, "/packages", req)
}

// Status fetches one package
func (c *Client) Status(ctx context.Context, packageID string) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodGet, "/packages/"+url.PathEscape(packageID), nil)
}

// Query asks packages a question. When citations are required the answer
// is rejected unless every claim is cited.
func (c *Client) Query(ctx context.Context, req QueryRequest) (json.RawMessage, error) {
	result, err := c.Call(ctx, http.MethodPost, "/query", req)
	if err != nil {
		return nil, err
	}
	if err := VerifyCitations(result, req.RequireCitations); err != nil {
		return nil, err
	}
	return result, nil
}

// Refresh schedules a rebuild of a package
func (c *Client) Refresh(ctx context.Context, packageID, reason string) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/packages/"+url.PathEscape(packageID)+"/refresh",
		map[string]string{"reason": reason})
}

// Search finds packages by text
func (c *Client) Search(ctx context.Context, query string, limit uint64) (json.RawMessage, error) {
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return c.Call(ctx, http.MethodGet, fmt.Sprintf("/packages/search?q=%s&limit=%d", q, limit), nil)
}

// Publish makes a snapshot of a package public
func (c *Client) Publish(ctx context.Context, packageID string, snapshotVersion uint64) (json.RawMessage, error) {
	return c.Call(ctx, http.MethodPost, "/packages/"+url.PathEscape(packageID)+"/publish",
		map[string]uint64{"snapshot_version": snapshotVersion})
}
