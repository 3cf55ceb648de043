// Package web serves the inspector in a browser: the latest images of each window,
// and endpoints that queue pointer and key events for the session loop.
package web

import (
	"context"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"goji.io"
	"goji.io/pat"

	"go.viam.com/depthinspect/inspect"
	"go.viam.com/depthinspect/logging"
	"go.viam.com/depthinspect/viewer"
)

// InspectionProvider reports what the session last showed.
type InspectionProvider interface {
	Latest() (viewer.Inspection, bool)
}

// PointerRequest is the body of POST /pointer. Kind is "move" or "down"; other kinds
// are accepted and ignored by the selector.
type PointerRequest struct {
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// KeyRequest is the body of POST /key. Key is a single character or "Escape".
type KeyRequest struct {
	Key string `json:"key"`
}

// Server is a viewer.Sink that serves presented images over HTTP.
type Server struct {
	*viewer.Latest

	events     *viewer.EventQueue
	inspection InspectionProvider
	logger     logging.Logger
	mux        *goji.Mux
	origins    []string

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	serveDone  chan struct{}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAllowedOrigins lets pages served from the given origins call the API. "*" allows
// any origin.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer returns a server that queues events onto events. inspection may be nil.
func NewServer(events *viewer.EventQueue, inspection InspectionProvider, logger logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		Latest:     viewer.NewLatest(),
		events:     events,
		inspection: inspection,
		logger:     logger,
		mux:        goji.NewMux(),
	}
	s.mux.HandleFunc(pat.Get("/"), s.handleIndex)
	s.mux.HandleFunc(pat.Get("/images/:name"), s.handleImage)
	s.mux.HandleFunc(pat.Post("/pointer"), s.handlePointer)
	s.mux.HandleFunc(pat.Post("/key"), s.handleKey)
	s.mux.HandleFunc(pat.Get("/inspection"), s.handleInspection)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetInspectionProvider sets the source for GET /inspection.
func (s *Server) SetInspectionProvider(inspection InspectionProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspection = inspection
}

// Handler returns the routes, behind CORS handling when origins are allowed.
func (s *Server) Handler() http.Handler {
	if len(s.origins) == 0 {
		return s.mux
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.mux)
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return errors.New("web server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %q", addr)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serveDone = make(chan struct{})

	httpServer, done := s.httpServer, s.serveDone
	go func() {
		defer close(done)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("web server stopped", "error", err)
		}
	}()
	s.logger.Infow("serving inspector", "url", "http://"+listener.Addr().String())
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close shuts the server down, waiting for in flight requests until ctx is done.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	httpServer, done := s.httpServer, s.serveDone
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}

	err := httpServer.Shutdown(ctx)
	<-done
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, struct {
		Windows []string
	}{
		Windows: []string{viewer.WindowFrame, viewer.WindowDepth, viewer.WindowRegion},
	})
	if err != nil {
		s.logger.Debugw("couldn't execute web page", "error", err)
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := pat.Param(r, "name")
	img, ok := s.Get(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		s.logger.Debugw("error encoding image", "window", name, "error", err)
	}
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad pointer event: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.events.PushPointer(viewer.PointerEvent{Kind: inspect.ParsePointerKind(req.Kind), X: req.X, Y: req.Y})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad key event: "+err.Error(), http.StatusBadRequest)
		return
	}
	key, err := parseKey(req.Key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.events.PushKey(key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInspection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	provider := s.inspection
	s.mu.Unlock()
	if provider == nil {
		http.NotFound(w, r)
		return
	}
	inspection, ok := provider.Latest()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(inspection); err != nil {
		s.logger.Debugw("error encoding inspection", "error", err)
	}
}

func parseKey(key string) (rune, error) {
	if key == "Escape" || key == "Esc" {
		return viewer.KeyEscape, nil
	}
	runes := []rune(key)
	if len(runes) != 1 {
		return 0, errors.Errorf("expected a single key, got %q", key)
	}
	return runes[0], nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>depth inspector</title>
<style>
body { font-family: sans-serif; background: #222; color: #eee; }
img { display: block; margin: 8px 0; image-rendering: pixelated; }
#depth { cursor: crosshair; }
</style>
</head>
<body>
<p>Hover the depth image to inspect, click to pin, click inside the pinned region to release. Press q or Esc to quit.</p>
{{range .Windows}}<h3>{{.}}</h3><img id="{{.}}" alt="{{.}}">
{{end}}<script>
const windows = [{{range $i, $w := .Windows}}{{if $i}}, {{end}}{{$w}}{{end}}];
function post(path, body) {
  fetch(path, {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body)});
}
function pointer(kind, ev) {
  const img = ev.target;
  const x = Math.floor(ev.offsetX * img.naturalWidth / img.clientWidth);
  const y = Math.floor(ev.offsetY * img.naturalHeight / img.clientHeight);
  post("/pointer", {kind: kind, x: x, y: y});
}
const depth = document.getElementById("depth");
depth.addEventListener("mousemove", ev => pointer("move", ev));
depth.addEventListener("mousedown", ev => pointer("down", ev));
document.addEventListener("keydown", ev => post("/key", {key: ev.key}));
setInterval(() => {
  for (const w of windows) {
    document.getElementById(w).src = "/images/" + w + "?t=" + Date.now();
  }
}, 100);
</script>
</body>
</html>
`))
