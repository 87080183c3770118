package cnst

const (
	AppName     = "xint"
	CommandName = "xint"

	// ServerName is reported in the initialize serverInfo
	ServerName = "xint"
)

// Operation modes recorded by the reliability sinks
const (
	ModeCLI = "cli"
	ModeMCP = "mcp"
)

// OperationKeyPrefixMCP prefixes reliability keys of tool calls
const OperationKeyPrefixMCP = "mcp:"

// Runtime setting keys
const (
	EnvPackageAPIBaseURL   = "XINT_PACKAGE_API_BASE_URL"
	EnvPackageAPIKey       = "XINT_PACKAGE_API_KEY"
	EnvWorkspaceID         = "XINT_WORKSPACE_ID"
	EnvBillingUpgradeURL   = "XINT_BILLING_UPGRADE_URL"
	EnvWebhookAllowedHosts = "XINT_WEBHOOK_ALLOWED_HOSTS"
)

const (
	DefaultBillingUpgradeURL = "https://xint.dev/pricing"
	DefaultDailyBudgetUSD    = 1.00
	DefaultDataDir           = "~/.xint/data"
)
