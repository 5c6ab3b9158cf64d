package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recera/fightweb/cmd/fightweb/internal/ui"
	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/overlay"
	"github.com/recera/fightweb/pkg/fightweb/palette"
	"github.com/recera/fightweb/pkg/fightweb/render"
	"github.com/recera/fightweb/pkg/fightweb/view"
	"github.com/recera/fightweb/pkg/live"
	"github.com/recera/fightweb/pkg/styling"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <payload.json>",
		Short: "Serve the interactive network over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, args[0])
		},
	}

	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().Bool("watch", false, "reload the payload when the file changes")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("server.watch", cmd.Flags().Lookup("watch"))
	return cmd
}

// logActions records overlay actions; the server has no profile pages.
type logActions struct{ log *zap.Logger }

func (l logActions) OpenProfile(id string) {
	l.log.Info("open profile", zap.String("fighter_id", id))
}

func (l logActions) FilterByDivision(division string) {
	l.log.Info("filter by division", zap.String("division", division))
}

type graphServer struct {
	a       *app
	path    string
	payload atomic.Pointer[graph.Payload]
	preview *view.Controller
	live    *live.Server
}

func (a *app) serve(ctx context.Context, path string) error {
	p, err := graph.LoadPayload(path)
	if err != nil {
		return err
	}
	preview, err := a.newView(p)
	if err != nil {
		return err
	}
	defer preview.Close()

	s := &graphServer{a: a, path: path, preview: preview}
	s.payload.Store(p)
	s.live = live.NewServer(s.newSession, live.WithLogger(a.log.Named("live")))
	defer s.live.Shutdown()

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ui.Good.Fprintf(os.Stderr, "serving %s ", path)
		ui.Faint.Fprintf(os.Stderr, "on http://%s\n", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.live.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})
	if a.cfg.Server.Watch {
		g.Go(func() error { return s.watch(ctx) })
	}
	return g.Wait()
}

func (s *graphServer) newSession() (*view.Controller, error) {
	return s.a.newView(s.payload.Load(), view.WithActions(logActions{log: s.a.log}))
}

func (s *graphServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /graph.svg", s.handleSVG)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /live/{session}", s.live.HandleWebSocket)
	return mux
}

func (s *graphServer) handlePage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.preview.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	page, err := render.RenderPage(render.Page{
		Title:  s.a.cfg.Server.Title,
		Frame:  snap.Frame,
		Sheets: []*styling.Sheet{overlay.Styles},
		Script: live.ClientScript,
		Attrs:  map[string]any{"data-live": "/live/" + live.NewSessionID()},
	})
	if err != nil {
		s.a.log.Error("rendering page", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(page))
}

func (s *graphServer) handleSVG(w http.ResponseWriter, r *http.Request) {
	snap, err := s.preview.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	svg, err := render.RenderSVG(snap.Frame)
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(svg))
}

type graphResponse struct {
	Metadata *graph.Metadata     `json:"metadata,omitempty"`
	Width    float64             `json:"width"`
	Height   float64             `json:"height"`
	Nodes    []render.RenderNode `json:"nodes"`
	Edges    []render.RenderEdge `json:"edges"`
	Legend   []palette.Entry     `json:"legend"`
}

func (s *graphServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.preview.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(graphResponse{
		Metadata: snap.Metadata,
		Width:    snap.Frame.Width,
		Height:   snap.Frame.Height,
		Nodes:    snap.Frame.Nodes,
		Edges:    snap.Frame.Edges,
		Legend:   snap.Legend,
	})
}

// watch reloads the payload after writes settle. The directory is
// watched so editors that replace the file by rename are seen too.
func (s *graphServer) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	target, _ := filepath.Abs(s.path)
	delay := s.a.cfg.Server.Debounce
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	debounce := time.NewTimer(delay)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if name, _ := filepath.Abs(event.Name); name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Reset(delay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.a.log.Warn("watcher error", zap.Error(err))
		case <-debounce.C:
			s.reload()
		}
	}
}

func (s *graphServer) reload() {
	p, err := graph.LoadPayload(s.path)
	if err != nil {
		// keep serving the last good payload
		s.a.log.Warn("payload reload failed", zap.Error(err))
		return
	}
	s.payload.Store(p)
	if err := s.preview.SetPayload(p); err != nil {
		s.a.log.Warn("preview reload failed", zap.Error(err))
	}
	s.live.Each(func(sess *live.Session) {
		if err := sess.Controller().SetPayload(p); err != nil {
			s.a.log.Debug("session reload skipped", zap.String("session", sess.ID), zap.Error(err))
		}
	})
	s.a.log.Info("payload reloaded", zap.Int("nodes", len(p.Nodes)), zap.Int("links", len(p.Links)))
}
