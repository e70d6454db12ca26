package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Router Errors (E100-E199)
	// ============================================

	"E100": {
		Category:   CategoryRouter,
		Message:    "Invalid route pattern",
		Suggestion: "Patterns use literal segments, :name, :name:type and a trailing * or *name",
	},
	"E101": {
		Category:   CategoryRouter,
		Message:    "Duplicate sibling route",
		Suggestion: "Sibling routes must have unique paths; remove or rename one of them",
	},
	"E102": {
		Category:   CategoryRouter,
		Message:    "Multiple wildcard routes",
		Suggestion: "Only one wildcard route is allowed per level",
	},
	"E103": {
		Category:   CategoryRouter,
		Message:    "Layout has no children",
		Suggestion: "Give the layout at least one page, index or wildcard child",
	},
	"E104": {
		Category:   CategoryRouter,
		Message:    "Route has no handler",
		Suggestion: "Give every page, index and wildcard route a PageHandler",
	},
	"E105": {
		Category:   CategoryRouter,
		Message:    "Wildcard must be the last segment",
		Suggestion: "Move the * segment to the end of the pattern",
	},
	"E106": {
		Category:   CategoryRouter,
		Message:    "Invalid route file name",
		Suggestion: "Use index, name, [param] or [...rest] file names",
	},
	"E107": {
		Category:   CategoryRouter,
		Message:    "Unknown parameter type",
		Suggestion: "Supported types are string, int, uint and uuid",
	},
	"E108": {
		Category:   CategoryRouter,
		Message:    "Missing link parameter",
		Suggestion: "Pass a value for every :param and *wildcard in the pattern",
	},

	// ============================================
	// Navigation Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryNavigation,
		Message:  "Invalid navigation path",
	},
	"E201": {
		Category: CategoryNavigation,
		Message:  "Loader failed",
	},
	"E202": {
		Category:   CategoryNavigation,
		Message:    "Loader panicked",
		Suggestion: "Loaders should return errors instead of panicking",
	},
	"E203": {
		Category:   CategoryNavigation,
		Message:    "Loader timed out",
		Suggestion: "Raise loader.timeout or make the loader faster",
	},
	"E204": {
		Category: CategoryNavigation,
		Message:  "Navigation rate limit exceeded",
	},
	"E205": {
		Category: CategoryNavigation,
		Message:  "Render failed",
	},
	"E206": {
		Category: CategoryNavigation,
		Message:  "Invalid live frame",
	},

	// ============================================
	// Config Errors (E300-E399)
	// ============================================

	"E300": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check waypoint.json for syntax errors",
	},
	"E301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E302": {
		Category:   CategoryConfig,
		Message:    "Invalid environment configuration",
		Suggestion: "Check the WAYPOINT_* environment variables",
	},

	// ============================================
	// Content Errors (E400-E499)
	// ============================================

	"E400": {
		Category: CategoryContent,
		Message:  "Content backend unavailable",
	},
	"E401": {
		Category:   CategoryContent,
		Message:    "Unknown content driver",
		Suggestion: "Use \"memory\" or \"sqlite\"",
	},
}

// GetAllCodes returns all registered codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for a code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a code. Not safe for concurrent use; call from init.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
