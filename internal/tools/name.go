package tools

// Name identifies a tool exposed over MCP. The set is closed: every Name
// has a descriptor, a required policy mode and a budget classification.
type Name string

const (
	Search            Name = "xint_search"
	Profile           Name = "xint_profile"
	Thread            Name = "xint_thread"
	Tweet             Name = "xint_tweet"
	Trends            Name = "xint_trends"
	XSearch           Name = "xint_xsearch"
	CollectionsList   Name = "xint_collections_list"
	CollectionsSearch Name = "xint_collections_search"
	Analyze           Name = "xint_analyze"
	Article           Name = "xint_article"
	Bookmarks         Name = "xint_bookmarks"
	PackageCreate     Name = "xint_package_create"
	PackageStatus     Name = "xint_package_status"
	PackageQuery      Name = "xint_package_query"
	PackageRefresh    Name = "xint_package_refresh"
	PackageSearch     Name = "xint_package_search"
	PackagePublish    Name = "xint_package_publish"
	CacheClear        Name = "xint_cache_clear"
	Watch             Name = "xint_watch"
	Diff              Name = "xint_diff"
	Report            Name = "xint_report"
	Sentiment         Name = "xint_sentiment"
	Costs             Name = "xint_costs"
)

func (n Name) String() string { return string(n) }

// Known reports whether n is part of the catalog
func (n Name) Known() bool {
	_, ok := descriptorIndex[n]
	return ok
}

// All returns every tool name in catalog order
func All() []Name {
	names := make([]Name, len(descriptors))
	for i, d := range descriptors {
		names[i] = Name(d.Name)
	}
	return names
}
