// Package router implements Waypoint's route table, path matcher and layout
// composition.
//
// A route table is a tree of Route values built with four constructors:
//
//	table, err := router.NewTable(
//	    router.Layout("", Shell,
//	        router.Index(HomePage),
//	        router.Page("about", AboutPage),
//	        router.Layout("blog", BlogLayout,
//	            router.Index(BlogIndex, router.WithLoader(loadPosts)),
//	            router.Page(":slug", PostPage, router.WithLoader(loadPost)),
//	        ),
//	        router.Wildcard(NotFoundPage),
//	    ),
//	)
//
// # Patterns
//
// Route paths are relative to their parent and may span several segments:
//
//	about          literal segment
//	:slug          one segment, captured as params["slug"]
//	:id:int        typed parameter (int, uint, uuid or string)
//	*  or  *rest   wildcard, matches any remaining suffix including empty
//
// A layout with an empty path is transparent: its children behave as
// siblings of the layout's own siblings, they are just wrapped in its chrome.
//
// # Matching
//
// Table.Match compares the requested path segment by segment. When several
// routes could match, the most specific wins: at the first segment where two
// candidates differ, a literal beats a typed parameter, which beats a plain
// parameter, which beats a wildcard. A wildcard therefore only ever matches
// when no other route does. No match is a normal outcome (ok == false).
//
// # Composition
//
// A Match carries the layouts on the path to the leaf, outer to inner.
// Compose wraps the leaf's rendered node in them in exactly that order.
//
// # File-based routes
//
// Discover derives routes from a file tree (index, name, [param],
// [param:type], [...rest]) so static pages can live next to the declarative
// table. Both sources are merged into one table and checked together.
package router
