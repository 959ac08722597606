// Package server exposes a dispatcher over FastCGI or plain HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/fcgi"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nihei9/charscope/dispatcher"
)

const (
	DefaultAddress    = "127.0.0.1:9000"
	DefaultMaxPayload = 1 << 20

	contentTypeJSON = "application/json; charset=utf-8"
)

type ServerOption func(s *Server) error

// MaxPayload limits the size of a request body in bytes.
func MaxPayload(n int64) ServerOption {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("max payload must be positive: %v", n)
		}
		s.maxPayload = n
		return nil
	}
}

// EnableMetrics records request metrics and serves them on GET /metrics.
func EnableMetrics() ServerOption {
	return func(s *Server) error {
		s.registry = prometheus.NewRegistry()
		m, err := newMetrics(s.registry)
		if err != nil {
			return err
		}
		s.metrics = m
		return nil
	}
}

type Server struct {
	d          *dispatcher.Dispatcher
	maxPayload int64
	registry   *prometheus.Registry
	metrics    *metrics
	handler    http.Handler
}

func New(d *dispatcher.Dispatcher, opts ...ServerOption) (*Server, error) {
	if d == nil {
		return nil, errors.New("a dispatcher is required")
	}
	s := &Server{
		d:          d,
		maxPayload: DefaultMaxPayload,
	}
	for _, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, err
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet).Name("healthz")
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet).Name("metrics")
	}
	r.PathPrefix("/").HandlerFunc(s.decode).Name("decode")

	s.handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)(r)
	return s, nil
}

// Handler returns the root handler of s.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := io.WriteString(w, "ok\n")
	if err != nil {
		glog.Errorf("cannot write a health check response: %v", err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxPayload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			glog.V(1).Infof("rejected a payload larger than %v bytes from %v", s.maxPayload, r.RemoteAddr)
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("payload exceeds %v bytes", s.maxPayload))
			return
		}
		glog.V(1).Infof("cannot read a request body from %v: %v", r.RemoteAddr, err)
		writeError(w, http.StatusBadRequest, "cannot read the request body")
		return
	}

	res := s.d.Handle(src)
	body, err := res.JSON()
	if err != nil {
		glog.Errorf("cannot encode a response: %v", err)
		writeError(w, http.StatusInternalServerError, "cannot encode the response")
		return
	}

	if s.metrics != nil {
		s.metrics.observe(len(src), res, time.Since(start).Seconds())
	}
	glog.V(2).Infof("%v %v: %v bytes in, %v bytes out", r.Method, r.URL.Path, len(src), len(body))

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(body)
	if err != nil {
		glog.Errorf("cannot write a response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, err := fmt.Fprintf(w, `{"error":%q}`, msg)
	if err != nil {
		glog.Errorf("cannot write an error response: %v", err)
	}
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	glog.ErrorDepth(1, v...)
}

// ServeFastCGI accepts FastCGI connections on l until ctx is done.
func (s *Server) ServeFastCGI(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fcgi.Serve(l, s.handler)
	}()

	select {
	case <-ctx.Done():
		l.Close()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// ServePlain accepts plain HTTP connections on l until ctx is done. In-flight requests are given a few
// seconds to finish.
func (s *Server) ServePlain(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-errCh
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
