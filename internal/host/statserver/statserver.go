// Package statserver exposes a runtime dashboard for a running emulator
// instance: Go runtime stats via go-echarts/statsview, plus a custom
// emulator-throughput chart rendered with go-echarts/v2 and served
// through a CORS-enabled mux (rs/cors), so a separate frontend origin
// (e.g. a local dev server) can poll it.
package statserver

import (
	"net/http"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/rs/cors"
)

// Server hosts the statsview Go-runtime dashboard at /debug/statsview
// (via Start) and provides, through Handler, a /debug/fps line chart of
// the last 300 recorded frame-rate samples.
type Server struct {
	mgr *statsview.Manager

	mu     sync.Mutex
	frames []opts.LineData
	labels []string
}

// New constructs a Server listening on addr (e.g. ":18066"), matching
// the default statsview convention.
func New(addr string) *Server {
	s := &Server{}
	s.mgr = statsview.New(viewer.WithAddr(addr))
	return s
}

// Start begins serving in the background; it does not block.
func (s *Server) Start() {
	go s.mgr.Start()
}

// Stop shuts the dashboard down.
func (s *Server) Stop() {
	s.mgr.Stop()
}

// RecordFrame appends one sample (an x-axis label and a frames-per-second
// value) to the FPS chart, dropping the oldest once 300 are held.
func (s *Server) RecordFrame(label string, framesPerSecond float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = append(s.labels, label)
	s.frames = append(s.frames, opts.LineData{Value: framesPerSecond})
	if len(s.labels) > 300 {
		s.labels = s.labels[1:]
		s.frames = s.frames[1:]
	}
}

// Handler returns the CORS-wrapped HTTP handler for the FPS chart,
// suitable for mounting alongside the statsview dashboard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/fps", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		labels := append([]string(nil), s.labels...)
		frames := append([]opts.LineData(nil), s.frames...)
		s.mu.Unlock()

		line := charts.NewLine()
		line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "goba frame rate"}))
		line.SetXAxis(labels).AddSeries("fps", frames)
		line.Render(w)
	})
	return cors.Default().Handler(mux)
}
