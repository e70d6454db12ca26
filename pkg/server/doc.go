// Package server serves a Waypoint route table over HTTP.
//
// Every page is first rendered on the server: the requested path is
// canonicalized (non-canonical GETs are redirected with 308), matched, its
// loader awaited and the composed tree written through templ. A small
// script then opens the live channel at /_waypoint/live and intercepts
// links marked data-nav, so later navigations happen over the WebSocket.
//
// # Live protocol
//
// Frames are JSON text messages.
//
//	client -> {"type":"navigate","path":"/blog/hello"}
//	server <- {"type":"hello","session":"<uuid>"}
//	server <- {"type":"render","generation":3,"path":"/blog/hello","status":"pending","html":"..."}
//	server <- {"type":"render","generation":3,"path":"/blog/hello","status":"ready","html":"..."}
//	server <- {"type":"error","code":"E204","message":"..."}
//
// A navigation always produces one render frame right away. If it is
// pending, a second frame follows when the loader settles, unless another
// navigation has started in the meantime. Frames for a generation older than
// one already sent are never written.
package server
