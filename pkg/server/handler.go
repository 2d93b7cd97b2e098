// Package server serves the host page that mounts a live editor session.
package server

import (
	"embed"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/live"
	"github.com/recera/nodeflow/pkg/scene"
)

//go:embed assets/client.js assets/style.css
var assets embed.FS

// MountID is the id of the element the editor scene is mounted into
const MountID = "nodeflow-root"

// Options configures the handler
type Options struct {
	Title  string
	Layout Layout
	Logger *zap.Logger
}

func (o *Options) withDefaults() Options {
	d := Options{Title: "nodeflow", Logger: zap.NewNop()}
	if o == nil {
		d.Layout = DefaultLayout(d.Title)
		return d
	}
	if o.Title != "" {
		d.Title = o.Title
	}
	d.Layout = o.Layout
	if d.Layout == nil {
		d.Layout = DefaultLayout(d.Title)
	}
	if o.Logger != nil {
		d.Logger = o.Logger
	}
	return d
}

// NewHandler returns the HTTP handler for the page, its assets, a health
// check and the websocket endpoint.
func NewHandler(ls *live.Server, opts *Options) http.Handler {
	o := opts.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/", pageHandler(o))
	mux.Handle("/client.js", assetHandler("assets/client.js", "text/javascript; charset=utf-8"))
	mux.Handle("/style.css", assetHandler("assets/style.css", "text/css; charset=utf-8"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
	mux.HandleFunc(live.PathPrefix, ls.HandleWebSocket)
	return logRequests(o.Logger, mux)
}

func pageHandler(o Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		mount := scene.El("div", "", scene.Attrs{
			"id":        MountID,
			"data-live": strings.TrimSuffix(live.PathPrefix, "/"),
		})
		page, err := scene.RenderToString(o.Layout.Wrap(mount))
		if err != nil {
			o.Logger.Error("Rendering page failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<!DOCTYPE html>\n")
		io.WriteString(w, page)
	}
}

func assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := assets.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(data)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the wrapped writer to http.ResponseController
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, live.PathPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
