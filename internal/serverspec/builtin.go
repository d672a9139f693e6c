package serverspec

// RepoResearchName is the one conditionally-included provider. It is
// part of the builtin set only when a GitHub token is available.
const RepoResearchName = "github.repo-research"

// GitHubTokenEnvKey is the env key the repo-research provider reads the
// token from.
const GitHubTokenEnvKey = "GITHUB_PERSONAL_ACCESS_TOKEN"

// MergeExceptions are prior-config names the builtin set already covers
// under equivalent behavior (textually distinct utility providers).
// They are never treated as extras during reconciliation.
func MergeExceptions() []string {
	return []string{"duckduckgo", "fetch"}
}

var builtinDefs = map[string]ServerDef{
	"awslabs.core-mcp-server": {
		Command:     "uvx",
		Args:        []string{"awslabs.core-mcp-server@latest"},
		Env:         map[string]string{"FASTMCP_LOG_LEVEL": "ERROR"},
		AutoApprove: []string{},
		Disabled:    boolPtr(false),
	},
	"awslabs.aws-documentation-mcp-server": {
		Command:     "uvx",
		Args:        []string{"awslabs.aws-documentation-mcp-server@latest"},
		Env:         map[string]string{"FASTMCP_LOG_LEVEL": "ERROR"},
		AutoApprove: []string{},
		Disabled:    boolPtr(false),
	},
	"awslabs.cdk-mcp-server": {
		Command:     "uvx",
		Args:        []string{"awslabs.cdk-mcp-server@latest"},
		Env:         map[string]string{"FASTMCP_LOG_LEVEL": "ERROR"},
		AutoApprove: []string{},
		Disabled:    boolPtr(false),
	},
	"awslabs.cost-analysis-mcp-server": {
		Command:     "uvx",
		Args:        []string{"awslabs.cost-analysis-mcp-server@latest"},
		Env:         map[string]string{"FASTMCP_LOG_LEVEL": "ERROR"},
		AutoApprove: []string{},
		Disabled:    boolPtr(false),
	},
	"awslabs.aws-diagram-mcp-server": {
		Command:     "uvx",
		Args:        []string{"awslabs.aws-diagram-mcp-server@latest"},
		Env:         map[string]string{"FASTMCP_LOG_LEVEL": "ERROR"},
		AutoApprove: []string{},
		Disabled:    boolPtr(false),
	},
	"awslabs.terraform-mcp-server": {
		Command:     "uvx",
		Args:        []string{"awslabs.terraform-mcp-server@latest"},
		Env:         map[string]string{"FASTMCP_LOG_LEVEL": "ERROR"},
		AutoApprove: []string{},
		Disabled:    boolPtr(false),
		Timeout:     intPtr(300),
	},
	"awslabs.cfn-mcp-server": {
		Command:     "uvx",
		Args:        []string{"awslabs.cfn-mcp-server@latest"},
		Env:         map[string]string{"FASTMCP_LOG_LEVEL": "ERROR"},
		AutoApprove: []string{},
		Disabled:    boolPtr(false),
	},
	"web-fetch": {
		Command:     "uvx",
		Args:        []string{"mcp-server-fetch"},
		AutoApprove: []string{"fetch"},
	},
	"time": {
		Command:     "uvx",
		Args:        []string{"mcp-server-time"},
		AutoApprove: []string{AutoApproveAll},
	},
	"git": {
		Command:     "uvx",
		Args:        []string{"mcp-server-git"},
		AutoApprove: []string{"git_status", "git_log", "git_diff"},
	},
	"sqlite": {
		Command: "uvx",
		Args:    []string{"mcp-server-sqlite", "--db-path", "mcp.db"},
	},
	"duckduckgo-search": {
		Command:     "uvx",
		Args:        []string{"duckduckgo-mcp-server"},
		AutoApprove: []string{"search"},
	},
	"memory": {
		Command: "npx",
		Args:    []string{"-y", "@modelcontextprotocol/server-memory"},
	},
	"sequential-thinking": {
		Command:  "npx",
		Args:     []string{"-y", "@modelcontextprotocol/server-sequential-thinking"},
		Disabled: boolPtr(true),
	},
}

// repoResearchDef is the template for the conditional provider; the
// token is injected into a clone, never into the template itself.
var repoResearchDef = ServerDef{
	Command:     "npx",
	Args:        []string{"-y", "@modelcontextprotocol/server-github"},
	Env:         map[string]string{},
	AutoApprove: []string{"search_repositories", "get_file_contents"},
	Disabled:    boolPtr(false),
}

// Builtins returns the builtin provider table, deep-cloned per call.
// The repo-research provider is included only when secret is non-empty;
// its env then carries the secret under GitHubTokenEnvKey. Every other
// provider is present unconditionally.
func Builtins(secret string) map[string]ServerDef {
	out := make(map[string]ServerDef, len(builtinDefs)+1)
	for name, def := range builtinDefs {
		out[name] = def.Clone()
	}
	if secret != "" {
		def := repoResearchDef.Clone()
		def.Env[GitHubTokenEnvKey] = secret
		out[RepoResearchName] = def
	}
	return out
}
