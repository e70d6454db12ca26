// Package navigation drives one browsing session through a route table.
//
// A Navigator matches each requested path, starts the leaf's loader and
// tracks the resulting View. Every navigation bumps a generation counter and
// cancels the context of the previous navigation's loader. A loader result
// is applied only while its generation is still current, so navigating
// A -> B before A's loader settles can never let A's data reach B's view.
//
//	nav := navigation.New(ctx, table, navigation.WithLoaderTimeout(5*time.Second))
//	nav.OnChange(func(v navigation.View) { send(nav.Render(v)) })
//	view, err := nav.Navigate("/blog/hello")
//	send(nav.Render(view)) // placeholder while the loader runs
package navigation
