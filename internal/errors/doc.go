// Package errors provides structured, coded errors for Waypoint.
//
// Every failure that reaches an operator (a broken route table, an invalid
// config file, a content backend that cannot be opened) is reported as an
// *Error carrying a stable code, a category and an optional hint:
//
//	err := errors.New("E101").
//	    WithDetail(`"/blog/:slug" is declared twice under "/blog"`).
//	    WithSuggestion("Remove or rename one of the routes")
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR E101: Duplicate sibling route
//	//
//	//   "/blog/:slug" is declared twice under "/blog"
//	//
//	//   Hint: Remove or rename one of the routes
//
// Codes are grouped by category:
//   - E1xx: route table construction and matching
//   - E2xx: navigation and loaders
//   - E3xx: configuration
//   - E4xx: content backends
//
// Errors unwrap to their cause, so errors.Is and errors.As work across the
// boundary.
package errors
