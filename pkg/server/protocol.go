package server

// Frame types.
const (
	FrameNavigate = "navigate"
	FrameHello    = "hello"
	FrameRender   = "render"
	FrameError    = "error"
)

// ClientFrame is a message from the browser.
type ClientFrame struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// ServerFrame is a message to the browser.
type ServerFrame struct {
	Type       string `json:"type"`
	Session    string `json:"session,omitempty"`
	Generation uint64 `json:"generation,omitempty"`
	Path       string `json:"path,omitempty"`
	Route      string `json:"route,omitempty"`
	Status     string `json:"status,omitempty"`
	HTML       string `json:"html,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
}

// final reports whether a render frame ends its generation.
func (f ServerFrame) final() bool {
	return f.Type == FrameRender && f.Status != "pending"
}
