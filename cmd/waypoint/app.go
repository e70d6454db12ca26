package main

import (
	"github.com/vango-dev/waypoint/internal/content"
	"github.com/vango-dev/waypoint/internal/site"
	"github.com/vango-dev/waypoint/pkg/querycache"
	"github.com/vango-dev/waypoint/pkg/router"
)

// inspectTable builds the site table over seed content, for commands that
// match routes without serving them. No loader runs, so the store is never
// read.
func inspectTable() (*router.Table, error) {
	return site.New(content.NewMemoryStore(0), querycache.New()).Table()
}
