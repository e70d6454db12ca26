// Package resource runs a loader asynchronously and tracks its lifecycle.
//
// A Resource wraps one fetch function. Each Start begins a new fetch with a
// fresh fetch id and cancels the context of the previous one; a result is
// only applied when its fetch id is still current, so a slow earlier fetch
// can never overwrite a later one.
//
// Basic usage:
//
//	post := resource.New(func(ctx context.Context) (*content.Post, error) {
//	    return store.GetPost(ctx, slug)
//	}).Timeout(5 * time.Second)
//
//	post.Start(ctx)
//
//	return post.Match(
//	    resource.OnLoading[*content.Post](func() *vdom.VNode { return Spinner() }),
//	    resource.OnError[*content.Post](func(err error) *vdom.VNode { return Oops(err) }),
//	    resource.OnReady(func(p *content.Post) *vdom.VNode { return PostBody(p) }),
//	)
package resource
