package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/gejjech/flowviz/pkg/cache"
	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/index"
	"github.com/gejjech/flowviz/pkg/pipeline"
	"github.com/gejjech/flowviz/pkg/render"
	"github.com/gejjech/flowviz/pkg/workflow"
)

const (
	defaultServeAddr = ":8466"
	renderCacheTTL   = 24 * time.Hour
)

type serveOpts struct {
	addr string
}

func newServeCmd(cfg *Config) *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve <corpus-dir>",
		Short: "HTTP API over a corpus with on-demand diagram rendering",
		Long: `Serve a workflow template corpus over HTTP.

Endpoints:
  GET /api/index               JSON inventory of the corpus
  GET /api/search?q=...        keyword search (q repeatable, all must match)
  GET /diagrams/{path}         render a template as a diagram
                               (?format=png|svg|pdf, ?width=, ?height=)

Rendered diagrams are cached; the backend is selected by the serve.cache
config key ("file", "redis", or "none").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args[0], opts, cfg)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8466)")

	return cmd
}

func runServe(cmd *cobra.Command, root string, opts *serveOpts, cfg *Config) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidPath, "corpus directory not found: %s", root)
	}

	store, err := openCache(ctx, cfg.Serve)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := firstNonEmpty(opts.addr, cfg.Serve.Addr, defaultServeAddr)
	srv := &corpusServer{
		root:   root,
		cache:  store,
		cfg:    cfg,
		logger: logger,
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Infof("serving %s on %s", root, addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(errors.ErrCodeInternal, err, "http server")
	}
	return nil
}

// openCache builds the render cache from serve config. Unset defaults to
// a file cache under the user cache dir.
func openCache(ctx context.Context, cfg ServeConfig) (cache.Cache, error) {
	switch cfg.Cache {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "serve.redis_url is required for the redis cache")
		}
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	case "file", "":
		dir := cfg.CacheDir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				base = os.TempDir()
			}
			dir = filepath.Join(base, "flowviz")
		}
		return cache.NewFileCache(dir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend: %s", cfg.Cache)
	}
}

type corpusServer struct {
	root   string
	cache  cache.Cache
	cfg    *Config
	logger *charmlog.Logger
}

func (s *corpusServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/index", s.handleIndex)
	r.Get("/api/search", s.handleSearch)
	r.Get("/diagrams/*", s.handleDiagram)

	return r
}

func (s *corpusServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := index.Scan(s.root)
	if err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := index.WriteJSON(w, records); err != nil {
		s.logger.Debugf("write index response: %v", err)
	}
}

func (s *corpusServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := index.Query{
		Keywords:      r.URL.Query()["q"],
		Categories:    r.URL.Query()["category"],
		SearchContent: r.URL.Query().Get("content") == "true",
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.httpError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %s", v))
			return
		}
		q.Limit = n
	}
	if len(q.Keywords) == 0 {
		s.httpError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "at least one q parameter is required"))
		return
	}

	hits, err := index.Search(s.root, q)
	if err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}
	records := make([]index.Record, len(hits))
	for i, h := range hits {
		records[i] = h.Record
	}
	w.Header().Set("Content-Type", "application/json")
	if err := index.WriteJSON(w, records); err != nil {
		s.logger.Debugf("write search response: %v", err)
	}
}

func (s *corpusServer) handleDiagram(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	path, err := s.resolve(rel)
	if err != nil {
		s.httpError(w, http.StatusBadRequest, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.DefaultFormat
	}
	if err := render.ValidateFormat(format); err != nil {
		s.httpError(w, http.StatusBadRequest, err)
		return
	}
	width := queryInt(r, "width", render.DefaultWidth)
	height := queryInt(r, "height", render.DefaultHeight)

	raw, err := os.ReadFile(path)
	if err != nil {
		s.httpError(w, http.StatusNotFound, errors.Wrap(errors.ErrCodeInputNotFound, err, "read %s", rel))
		return
	}

	key := cache.RenderKey(cache.Hash(raw), format, width, height, 0)
	if payload, found, err := s.cache.Get(r.Context(), key); err == nil && found {
		// The produced format may differ from the requested one (the
		// fallback stage always emits PNG), so it travels with the
		// cached bytes.
		if cachedFormat, data, ok := decodeCached(payload); ok {
			s.writeDiagram(w, cachedFormat, data)
			return
		}
		_ = s.cache.Delete(r.Context(), key)
	}

	doc, err := workflow.Parse(raw)
	if err != nil {
		s.httpError(w, http.StatusUnprocessableEntity, err)
		return
	}

	result, data, err := pipeline.RenderDocument(doc, filepath.Base(path), pipeline.Options{
		Format: format,
		Width:  width,
		Height: height,
		Logger: s.logger,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch errors.GetCode(err) {
		case errors.ErrCodeInvalidGraphStructure, errors.ErrCodeEmptyGraph:
			status = http.StatusUnprocessableEntity
		}
		s.httpError(w, status, err)
		return
	}

	if err := s.cache.Set(r.Context(), key, encodeCached(result.Format, data), renderCacheTTL); err != nil {
		s.logger.Debugf("cache set: %v", err)
	}
	s.writeDiagram(w, result.Format, data)
}

// encodeCached prefixes diagram bytes with the format actually produced,
// newline-terminated, so a cache hit is labeled by what was rendered
// rather than what was requested.
func encodeCached(format string, data []byte) []byte {
	payload := make([]byte, 0, len(format)+1+len(data))
	payload = append(payload, format...)
	payload = append(payload, '\n')
	return append(payload, data...)
}

// decodeCached splits a cached payload into format and diagram bytes.
// ok is false for payloads without a recognizable format prefix, which
// callers treat as a cache miss.
func decodeCached(payload []byte) (format string, data []byte, ok bool) {
	i := bytes.IndexByte(payload, '\n')
	if i < 0 {
		return "", nil, false
	}
	format = string(payload[:i])
	if !render.ValidFormats[format] {
		return "", nil, false
	}
	return format, payload[i+1:], true
}

// resolve maps a URL path to a file under the corpus root, rejecting
// anything that escapes it.
func (s *corpusServer) resolve(rel string) (string, error) {
	rel = filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", errors.New(errors.ErrCodeInvalidPath, "invalid template path")
	}
	if !strings.HasSuffix(rel, ".json") {
		return "", errors.New(errors.ErrCodeInvalidPath, "template path must end in .json")
	}
	return filepath.Join(s.root, rel), nil
}

func (s *corpusServer) writeDiagram(w http.ResponseWriter, format string, data []byte) {
	switch format {
	case render.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	case render.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	default:
		w.Header().Set("Content-Type", "image/png")
	}
	w.Write(data)
}

func (s *corpusServer) httpError(w http.ResponseWriter, status int, err error) {
	s.logger.Debugf("http %d: %v", status, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q,"code":%q}`, errors.UserMessage(err), errors.GetCode(err))
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
