package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vango-dev/waypoint/internal/errors"
	"github.com/vango-dev/waypoint/pkg/navigation"
	"github.com/vango-dev/waypoint/pkg/routepath"
)

func requestID(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}

// liveSession is one WebSocket connection and its navigator.
type liveSession struct {
	id      string
	server  *Server
	conn    *websocket.Conn
	nav     *navigation.Navigator
	limiter *rate.Limiter
	logger  *slog.Logger

	out       chan ServerFrame
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once

	// Owned by writeLoop.
	lastGen   uint64
	lastFinal bool
}

// handleLive upgrades to the live channel and serves it until the client
// goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered with an HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		if s.metrics != nil {
			s.metrics.WebSocketError("upgrade")
		}
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	id := uuid.NewString()
	logger := s.logger.With("session", id, "request_id", requestID(r))
	sess := &liveSession{
		id:      id,
		server:  s,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(s.config.Live.NavigateRate), s.config.Live.NavigateBurst),
		logger:  logger,
		out:     make(chan ServerFrame, 16),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	sess.nav = s.newNavigator(ctx, logger)
	sess.nav.OnChange(sess.pushView)

	s.addSession(sess)
	defer s.removeSession(sess)
	logger.Info("live session opened")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.writeLoop()
	}()

	sess.enqueue(ServerFrame{Type: FrameHello, Session: id})
	sess.readLoop()
	sess.close()
	wg.Wait()
	logger.Info("live session closed")
}

// readLoop reads frames until the connection fails or closes.
func (sess *liveSession) readLoop() {
	cfg := sess.server.config.Live
	sess.conn.SetReadLimit(cfg.MaxMessageSize)
	sess.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
				sess.wsError("read")
			}
			return
		}
		sess.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		var frame ClientFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			sess.sendError(errors.New("E206").Wrap(err))
			continue
		}
		if m := sess.server.metrics; m != nil {
			m.FrameReceived(frame.Type)
		}

		switch frame.Type {
		case FrameNavigate:
			sess.navigate(frame.Path)
		default:
			sess.sendError(errors.New("E206").WithDetailf("unknown frame type %q", frame.Type))
		}
	}
}

func (sess *liveSession) navigate(path string) {
	if !sess.limiter.Allow() {
		sess.sendError(errors.New("E204"))
		return
	}
	target, err := routepath.ValidateNavPath(path)
	if err != nil {
		sess.sendError(errors.New("E200").WithDetailf("%q", path).Wrap(err))
		return
	}
	view, err := sess.nav.Navigate(target)
	if err != nil {
		sess.sendError(err)
		return
	}
	sess.pushView(view)
}

// pushView renders a view and queues it. It runs on the read loop for
// fresh navigations and on loader goroutines for settled ones.
func (sess *liveSession) pushView(view navigation.View) {
	if view.Generation < sess.nav.Generation() {
		return
	}
	frame, err := sess.renderFrame(view)
	if err != nil {
		sess.logger.Error("render failed", "path", view.Path, "error", err)
		sess.sendError(err)
		return
	}
	sess.enqueue(frame)
}

func (sess *liveSession) renderFrame(view navigation.View) (frame ServerFrame, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("E205").WithDetailf("%v", p)
		}
	}()
	html, err := sess.server.renderer.RenderToString(sess.nav.Render(view))
	if err != nil {
		return ServerFrame{}, errors.New("E205").Wrap(err)
	}
	return ServerFrame{
		Type:       FrameRender,
		Session:    sess.id,
		Generation: view.Generation,
		Path:       view.URL(),
		Route:      view.RouteName(),
		Status:     view.Status.String(),
		HTML:       html,
	}, nil
}

func (sess *liveSession) sendError(err error) {
	e := errors.FromError(err, "E206")
	sess.enqueue(ServerFrame{Type: FrameError, Code: e.Code, Message: e.Error()})
}

func (sess *liveSession) enqueue(f ServerFrame) {
	select {
	case sess.out <- f:
	case <-sess.done:
	}
}

// writeLoop owns all writes to the connection.
func (sess *liveSession) writeLoop() {
	cfg := sess.server.config.Live
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-sess.out:
			if !sess.shouldWrite(f) {
				continue
			}
			if err := sess.write(f); err != nil {
				sess.logger.Debug("write failed", "error", err)
				sess.wsError("write")
				sess.close()
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(cfg.WriteTimeout)
			if err := sess.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				sess.wsError("ping")
				sess.close()
				return
			}

		case <-sess.done:
			deadline := time.Now().Add(time.Second)
			sess.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}
	}
}

// shouldWrite drops render frames superseded by what was already written or
// by a newer navigation.
func (sess *liveSession) shouldWrite(f ServerFrame) bool {
	if f.Type != FrameRender {
		return true
	}
	if f.Generation < sess.lastGen || f.Generation < sess.nav.Generation() {
		return false
	}
	if f.Generation == sess.lastGen && sess.lastFinal {
		return false
	}
	sess.lastGen = f.Generation
	sess.lastFinal = f.final()
	return true
}

func (sess *liveSession) write(f ServerFrame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding %s frame: %w", f.Type, err)
	}
	sess.conn.SetWriteDeadline(time.Now().Add(sess.server.config.Live.WriteTimeout))
	if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	if m := sess.server.metrics; m != nil {
		m.FrameSent(f.Type)
	}
	return nil
}

func (sess *liveSession) wsError(kind string) {
	if m := sess.server.metrics; m != nil {
		m.WebSocketError(kind)
	}
}

// close stops the session. Safe to call from any goroutine, more than once.
func (sess *liveSession) close() {
	sess.closeOnce.Do(func() {
		sess.cancel()
		sess.nav.Close()
		close(sess.done)
		// Unblock readLoop.
		sess.conn.SetReadDeadline(time.Now())
	})
}
