package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"covid-dashboard/models"
	"covid-dashboard/services"
	"covid-dashboard/storage"
	"covid-dashboard/utils"
)

// ChartSource serves the latest image drawn at each mount point.
type ChartSource interface {
	Chart(mount string) ([]byte, bool)
	Mounts() []string
}

// Server exposes the dashboard over HTTP.
type Server struct {
	dash      *services.Dashboard
	charts    ChartSource
	logger    *utils.Logger
	maxUpload int64
}

func New(dash *services.Dashboard, charts ChartSource, logger *utils.Logger, maxUpload int64) *Server {
	return &Server{dash: dash, charts: charts, logger: logger, maxUpload: maxUpload}
}

// SetupRoutes builds the router.
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.PageHandler)
	r.Get("/healthz", HealthHandler)
	r.Post("/upload", s.UploadHandler)
	r.Post("/region", s.RegionHandler)
	r.Get("/api/dashboard", s.ViewHandler)
	r.Get("/charts/{mount}.png", s.ChartHandler)
	r.Get("/export.csv", s.ExportHandler)

	return r
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

func (s *Server) PageHandler(w http.ResponseWriter, r *http.Request) {
	view := s.dash.View()
	data := struct {
		View    models.DashboardView
		Ready   bool
		Version string
		Charts  []chartSlot
	}{
		View:    view,
		Ready:   view.State == services.StateIdle.String(),
		Version: view.UploadID + "-" + view.Selection,
	}
	drawn := make(map[string]bool)
	for _, m := range s.charts.Mounts() {
		drawn[m] = true
	}
	for _, m := range []string{models.MountTrend, models.MountGender, models.MountAge} {
		data.Charts = append(data.Charts, chartSlot{Mount: m, Ready: drawn[m]})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("[server] Page render failed: %v", err)
	}
}

func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		http.Error(w, "Upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("dataInput")
	if err != nil {
		http.Error(w, "Missing file field dataInput", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Could not read upload", http.StatusBadRequest)
		return
	}

	err = s.dash.Dispatch(r.Context(), services.FileUploaded{Name: header.Filename, Data: data})
	if err != nil {
		http.Error(w, "Could not parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) RegionHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	err := s.dash.Dispatch(r.Context(), services.RegionSelected{Region: r.FormValue("region")})
	switch {
	case errors.Is(err, services.ErrNoDataset):
		http.Error(w, "Upload a dataset first", http.StatusConflict)
		return
	case errors.Is(err, services.ErrUnknownRegion):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) ViewHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.dash.View()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (s *Server) ChartHandler(w http.ResponseWriter, r *http.Request) {
	png, ok := s.charts.Chart(chi.URLParam(r, "mount"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(png)
}

func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="covid-data.csv"`)
	if err := s.dash.Export(storage.NewCSVWriter(w)); err != nil {
		s.logger.Error("[server] Export failed: %v", err)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("[server] %s %s %d %v (%s)",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
