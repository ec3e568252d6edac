package dokuwiki

// LoginArgs holds parameters for dokuwiki_login
type LoginArgs struct {
	Username string `json:"username,omitempty" jsonschema_description:"DokuWiki user name (defaults to DOKUWIKI_USERNAME)"`
	Password string `json:"password,omitempty" jsonschema_description:"Password (defaults to DOKUWIKI_PASSWORD)"`
}

// LoginResult is the outcome of dokuwiki_login
type LoginResult struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	Message       string `json:"message"`
}

// CheckStatusArgs holds parameters for dokuwiki_check_status (none)
type CheckStatusArgs struct{}

// StatusResult reports whether the XML-RPC API answers
type StatusResult struct {
	Available  bool   `json:"available"`
	Version    string `json:"version,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
}

// RandomArticleArgs holds parameters for dokuwiki_random_article (none)
type RandomArticleArgs struct{}

// RandomArticleResult is a randomly chosen readable page
type RandomArticleResult struct {
	Found   bool   `json:"found"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// SuggestArgs holds parameters for dokuwiki_suggest
type SuggestArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"Full-text search query"`
}

// SuggestResult lists main-namespace pages matching a query
type SuggestResult struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
	Count       int      `json:"count"`
}

// GetPageHTMLArgs holds parameters for dokuwiki_get_page_html
type GetPageHTMLArgs struct {
	ID string `json:"id" jsonschema:"required" jsonschema_description:"Page id (e.g. wiki:syntax)"`
}

// PageHTMLResult is the rendered HTML of a page
type PageHTMLResult struct {
	Found      bool   `json:"found"`
	ResolvedID string `json:"resolved_id"`
	HTML       string `json:"html,omitempty"`
}

// SubPagesArgs holds parameters for dokuwiki_sub_pages
type SubPagesArgs struct {
	ID string `json:"id" jsonschema:"required" jsonschema_description:"Page id whose first paragraph is scanned for links"`
}

// SubPagesResult lists the pages linked from a page's first paragraph
type SubPagesResult struct {
	ResolvedID string   `json:"resolved_id"`
	Links      []string `json:"links"`
	Count      int      `json:"count"`
}

// PageTitleArgs holds parameters for dokuwiki_page_title
type PageTitleArgs struct {
	ID string `json:"id" jsonschema:"required" jsonschema_description:"Page id to look up"`
}

// PageTitleResult reports whether a page exists and its title
type PageTitleResult struct {
	Found bool   `json:"found"`
	Title string `json:"title,omitempty"`
}

// SetDebugArgs holds parameters for dokuwiki_set_debug
type SetDebugArgs struct {
	Enabled bool `json:"enabled" jsonschema_description:"Log raw XML-RPC requests and responses"`
}

// SetDebugResult reports the debug setting now in effect
type SetDebugResult struct {
	Debug bool `json:"debug"`
}
