package tools

// AllTools contains all tool specifications for the DokuWiki MCP server.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// SESSION TOOLS
	// ==========================================================================
	{
		Name:     "dokuwiki_login",
		Method:   "Login",
		Title:    "Log In to DokuWiki",
		Category: "session",
		Description: `Log in to the wiki so later calls can read protected pages.

USE WHEN: Pages come back as missing or random articles are never found because the wiki requires authentication.

NOT FOR: Checking whether the wiki is reachable (use dokuwiki_check_status).

PARAMETERS:
- username: Wiki user (optional, defaults to DOKUWIKI_USERNAME)
- password: Password (optional, defaults to DOKUWIKI_PASSWORD)

RETURNS: Whether the login succeeded. The session cookie is kept for the rest of the process.`,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "dokuwiki_check_status",
		Method:   "CheckStatus",
		Title:    "Check DokuWiki API Status",
		Category: "session",
		Description: `Check that the DokuWiki XML-RPC API answers.

USE WHEN: User asks "is the wiki up", "which DokuWiki version", or before other calls to diagnose failures.

PARAMETERS: none

RETURNS: Availability plus the DokuWiki and XML-RPC API versions.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// DISCOVERY TOOLS
	// ==========================================================================
	{
		Name:     "dokuwiki_random_article",
		Method:   "RandomArticle",
		Title:    "Random DokuWiki Article",
		Category: "discovery",
		Description: `Pick a random page the current user may read.

USE WHEN: User asks for "a random page", "surprise me", or wants to explore the wiki.

NOT FOR: Finding pages on a topic (use dokuwiki_suggest).

PARAMETERS: none

RETURNS: A page id. index: and playground: pages are never chosen; up to 10 candidates are checked for read access.`,
		ReadOnly:  true,
		OpenWorld: true,
	},
	{
		Name:     "dokuwiki_suggest",
		Method:   "Suggest",
		Title:    "Suggest DokuWiki Pages",
		Category: "discovery",
		Description: `Full-text search returning main-namespace page ids.

USE WHEN: User asks "find pages about X", "is there a page on X", or needs autocomplete-style suggestions.

PARAMETERS:
- query: Search text (required)

RETURNS: Up to 10 page ids without a namespace, in the wiki's ranking order.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "dokuwiki_sub_pages",
		Method:   "SubPages",
		Title:    "DokuWiki Sub-Pages",
		Category: "discovery",
		Description: `List the wiki pages linked from the first paragraph of a page.

USE WHEN: User wants to navigate from a page to related pages, or build a page tree.

NOT FOR: Reading the page itself (use dokuwiki_get_page_html).

PARAMETERS:
- id: Page id (required)

RETURNS: Link targets without namespace, underscores shown as spaces, duplicates removed. External links are skipped.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// READ TOOLS
	// ==========================================================================
	{
		Name:     "dokuwiki_get_page_html",
		Method:   "GetPageHTML",
		Title:    "Get DokuWiki Page HTML",
		Category: "read",
		Description: `Get the rendered HTML of a page.

USE WHEN: User asks "show me page X", "what does page X say".

PARAMETERS:
- id: Page id such as wiki:syntax (required)

RETURNS: The page HTML, or found=false when it could not be fetched.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "dokuwiki_page_title",
		Method:   "PageTitle",
		Title:    "DokuWiki Page Title",
		Category: "read",
		Description: `Check that a page exists and get its title.

USE WHEN: Verifying a page id before linking to it.

PARAMETERS:
- id: Page id (required)

RETURNS: found=true and the title when the page has content. The title is the page id.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SETTINGS
	// ==========================================================================
	{
		Name:     "dokuwiki_set_debug",
		Method:   "SetDebug",
		Title:    "Toggle Debug Logging",
		Category: "settings",
		Description: `Turn logging of raw XML-RPC requests and responses on or off.

USE WHEN: Diagnosing unexpected results from other tools.

PARAMETERS:
- enabled: true to log request and response bodies

RETURNS: The debug setting now in effect. Logs go to stderr.`,
		Idempotent: true,
	},
}
