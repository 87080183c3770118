package packageapi

import (
	"github.com/tidwall/gjson"

	"github.com/xint-dev/xint/internal/common/errorx"
)

// VerifyCitations checks that every claim in a query result is backed by at
// least one citation with a url. It does nothing unless required is set.
func VerifyCitations(result []byte, required bool) error {
	if !required {
		return nil
	}
	if !gjson.ValidBytes(result) {
		return errorx.New(errorx.KindInvalidResponseShape, "Package API query response must be a JSON object.")
	}
	root := gjson.ParseBytes(result)
	if !root.IsObject() {
		return errorx.New(errorx.KindInvalidResponseShape, "Package API query response must be a JSON object.")
	}

	claims := arrayOf(root.Get("claims"))
	citations := arrayOf(root.Get("citations"))
	if len(claims) > 0 && len(citations) == 0 {
		return errorx.New(errorx.KindMissingCitations,
			"Package API query response missing citations while require_citations=true.")
	}

	var ids []string
	seen := make(map[string]struct{}, len(claims))
	for _, claim := range claims {
		if !claim.IsObject() {
			continue
		}
		id := claim.Get("claim_id")
		if id.Type != gjson.String {
			continue
		}
		if _, dup := seen[id.Str]; dup {
			continue
		}
		seen[id.Str] = struct{}{}
		ids = append(ids, id.Str)
	}
	if len(ids) == 0 {
		return nil
	}

	cited := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		if !c.IsObject() {
			continue
		}
		id, u := c.Get("claim_id"), c.Get("url")
		if id.Type != gjson.String || u.Type != gjson.String || id.Str == "" || u.Str == "" {
			continue
		}
		cited[id.Str] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := cited[id]; !ok {
			return errorx.New(errorx.KindUncitedClaim,
				"Package API query response has uncited claim '%s' while require_citations=true.", id)
		}
	}
	return nil
}

func arrayOf(v gjson.Result) []gjson.Result {
	if !v.IsArray() {
		return nil
	}
	return v.Array()
}
