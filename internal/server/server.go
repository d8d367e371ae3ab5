// Package server hosts a viewer session over a websocket so a browser
// canvas can drive the viewport and draw the camera it pushes back.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taigrr/meshview/pkg/loader"
	"github.com/taigrr/meshview/pkg/session"
	"github.com/taigrr/meshview/pkg/viewport"
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Settings viewport.Settings
	Loader   viewport.ModelLoader
	Sessions *session.Manager
	Logger   *zap.Logger
	// SeedPath is read into the annotation store once at start.
	SeedPath string
}

// Server owns one viewer, its frame loop and the connected clients.
type Server struct {
	loop     *viewport.FrameLoop
	viewer   *viewport.Viewer
	loader   viewport.ModelLoader
	sessions *session.Manager
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New builds a server. Sessions defaults to an in-memory store.
func New(opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Settings.FPS == 0 {
		opts.Settings = viewport.DefaultSettings()
	}
	if opts.Loader == nil {
		opts.Loader = loader.New(loader.WithLogger(log.Named("loader")))
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager(session.NewMemoryStore(), session.WithLogger(log.Named("session")))
	}

	s := &Server{
		loop:     viewport.NewFrameLoop(opts.Settings.FPS),
		loader:   opts.Loader,
		sessions: opts.Sessions,
		log:      log,
		clients:  map[*client]struct{}{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.viewer = viewport.New(
		viewport.WithSettings(opts.Settings),
		viewport.WithScheduler(s.loop),
		viewport.WithLoader(opts.Loader),
		viewport.WithDisplay(wsDisplay{s}),
		viewport.WithLogger(log.Named("viewer")),
	)
	s.viewer.OnFrame(func(_ time.Time, cam viewport.CameraState) {
		s.broadcast(Response{Type: MsgFrame, Camera: &cam})
	})
	if err := s.viewer.SeedAnnotations(opts.SeedPath); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Handler returns the HTTP routes. Everything except login and logout
// needs a session.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/login", s.sessions.LoginHandler())
	mux.Handle("/logout", s.sessions.LogoutHandler())
	mux.Handle("/ws", s.sessions.Guard(http.HandlerFunc(s.handleWebSocket)))
	mux.Handle("/manifest.json", s.sessions.Guard(http.HandlerFunc(s.handleManifest)))
	mux.Handle("/annotations.json", s.sessions.Guard(http.HandlerFunc(s.handleAnnotations)))
	mux.Handle("/", s.sessions.Guard(http.HandlerFunc(s.handleHome)))
	return mux
}

// Load replaces the model. The fetch runs off the frame loop so input
// keeps flowing while it resolves. Every client hears the outcome,
// including a failure.
func (s *Server) Load(ctx context.Context, desc loader.ModelDescriptor) error {
	var ticket viewport.LoadTicket
	if err := s.loop.Call(ctx, func() error {
		ticket = s.viewer.BeginLoad(desc)
		return nil
	}); err != nil {
		return err
	}
	sc, loadErr := s.loader.Load(ctx, desc)
	err := s.loop.Call(context.WithoutCancel(ctx), func() error {
		return s.viewer.Install(ticket, sc, loadErr)
	})
	// A newer load will announce itself.
	if !errors.Is(err, viewport.ErrSuperseded) && !errors.Is(err, viewport.ErrLoopClosed) {
		s.broadcast(s.state(MsgResult, 0))
	}
	return err
}

// ListenAndServe serves on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("serving", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdown)
	s.Close()
	return err
}

// Close disconnects every client and stops the frame loop.
func (s *Server) Close() {
	_ = s.loop.Call(context.Background(), func() error {
		s.viewer.Close()
		return nil
	})
	s.loop.Close()
	s.mu.Lock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
	s.mu.Unlock()
}

// Viewer exposes the session viewer. Use Do to touch it.
func (s *Server) Viewer() *viewport.Viewer { return s.viewer }

// Do runs fn on the frame loop.
func (s *Server) Do(ctx context.Context, fn func(v *viewport.Viewer) error) error {
	return s.loop.Call(ctx, func() error { return fn(s.viewer) })
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(homePage))
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.Do(r.Context(), func(v *viewport.Viewer) error { return v.WriteManifest(&buf) })
	if errors.Is(err, viewport.ErrNoScene) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.viewer.Annotations().WriteJSON(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Info("client connected", zap.String("remote", r.RemoteAddr))

	go s.writePump(c)
	s.sendTo(c, s.state(MsgHello, 0))

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		close(c.send)
		s.mu.Unlock()
		_ = conn.Close()
		s.log.Info("client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		s.sendTo(c, s.dispatch(r.Context(), req))
	}
}

func (s *Server) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.log.Debug("websocket write failed", zap.Error(err))
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

func (s *Server) sendTo(c *client, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		s.log.Warn("client too slow, dropping message", zap.String("type", resp.Type))
	}
}

// broadcast pushes resp to every client, dropping it for clients whose
// buffer is full.
func (s *Server) broadcast(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal broadcast", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// state snapshots the viewer on the loop. It must not be called from the
// loop goroutine itself.
func (s *Server) state(typ string, id int) Response {
	resp := Response{Type: typ, ID: id}
	_ = s.loop.Call(context.Background(), func() error {
		resp = s.snapshot(typ, id)
		return nil
	})
	return resp
}

// snapshot must run on the loop.
func (s *Server) snapshot(typ string, id int) Response {
	cam := s.viewer.Camera()
	resp := Response{
		Type:      typ,
		ID:        id,
		Status:    s.viewer.Status().String(),
		Model:     s.viewer.Descriptor().URL,
		Camera:    &cam,
		Selection: s.viewer.Selection().State().String(),
	}
	if ref, ok := s.viewer.Selection().Selected(); ok {
		resp.Mesh = &ref
	}
	if err := s.viewer.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// wsDisplay toggles fullscreen in connected browsers.
type wsDisplay struct{ s *Server }

func (d wsDisplay) ToggleFullscreen() error {
	if d.s.clientCount() == 0 {
		return viewport.ErrFullscreenUnsupported
	}
	d.s.broadcast(Response{Type: MsgFullscreen, Fullscreen: true})
	return nil
}

const homePage = `<!doctype html>
<title>meshview</title>
<p>Connect a canvas client to <code>/ws</code>. Model outputs:
<a href="/manifest.json">manifest.json</a>,
<a href="/annotations.json">annotations.json</a>.
<a href="/logout">Sign out</a></p>
`
