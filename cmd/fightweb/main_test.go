package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/recera/fightweb/internal/config"
	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/layout"
	"github.com/recera/fightweb/pkg/live"
)

const payloadJSON = `{
  "nodes": [
    {"fighter_id": "a", "name": "Ana", "division": "Flyweight", "total_fights": 12},
    {"fighter_id": "b", "name": "Bo", "division": "Bantamweight", "total_fights": 4}
  ],
  "links": [{"source": "a", "target": "b", "fights": 2}],
  "metadata": {"query": "flyweights"}
}`

func testApp(t *testing.T) *app {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return &app{v: v, cfg: cfg, log: zaptest.NewLogger(t)}
}

func writePayload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payloadJSON), 0o644))
	return path
}

func TestWriteLayout(t *testing.T) {
	p, err := graph.DecodePayload(strings.NewReader(payloadJSON))
	require.NoError(t, err)
	r := layout.Compute(p.Nodes, p.Links, nil)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeLayout(&buf, "json", p, r))
		var got layout.Result
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Len(t, got.Nodes, 2)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeLayout(&buf, "yaml", p, r))
		var got layout.Result
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Len(t, got.Nodes, 2)
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeLayout(&buf, "table", p, r))
		assert.Contains(t, buf.String(), "Ana")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, writeLayout(&bytes.Buffer{}, "xml", p, r))
	})
}

func newGraphServer(t *testing.T) (*graphServer, *httptest.Server) {
	t.Helper()
	a := testApp(t)
	path := writePayload(t)
	p, err := graph.LoadPayload(path)
	require.NoError(t, err)
	preview, err := a.newView(p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = preview.Close() })

	s := &graphServer{a: a, path: path, preview: preview}
	s.payload.Store(p)
	s.live = live.NewServer(s.newSession)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(func() {
		s.live.Shutdown()
		ts.Close()
	})
	return s, ts
}

func TestServeRoutes(t *testing.T) {
	_, ts := newGraphServer(t)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html; charset=utf-8", `data-live="/live/`},
		{"/graph.svg", "image/svg+xml", "<svg"},
		{"/api/graph", "application/json", `"query":"flyweights"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			var buf bytes.Buffer
			_, err = buf.ReadFrom(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func TestServeNotFound(t *testing.T) {
	_, ts := newGraphServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReload(t *testing.T) {
	s, _ := newGraphServer(t)
	updated := strings.Replace(payloadJSON, `"links"`, `"extra": 1, "links"`, 1)
	updated = strings.Replace(updated, `{"fighter_id": "b"`, `{"fighter_id": "c", "name": "Cy", "total_fights": 1},
    {"fighter_id": "b"`, 1)
	require.NoError(t, os.WriteFile(s.path, []byte(updated), 0o644))

	s.reload()

	snap, err := s.preview.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Frame.Nodes, 3)
	assert.Len(t, s.payload.Load().Nodes, 3)
}

func TestReloadKeepsLastGoodPayload(t *testing.T) {
	s, _ := newGraphServer(t)
	require.NoError(t, os.WriteFile(s.path, []byte("{"), 0o644))

	s.reload()

	assert.Len(t, s.payload.Load().Nodes, 2)
}
