package server

import (
	_ "embed"
	"net/http"

	"github.com/vango-dev/waypoint/pkg/vdom"
)

//go:embed client.js
var clientScript []byte

func handleClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(clientScript)
}

// ClientScript is the <script> tag layouts include to enable live
// navigation.
func ClientScript() *vdom.VNode {
	return vdom.Script(vdom.Src(ClientScriptPath), vdom.Defer())
}
