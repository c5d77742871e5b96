// Package api serves comparison operations over HTTP as JSON.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
	"github.com/bcompare-mcp/bcompare-go/internal/operations"
	"github.com/bcompare-mcp/bcompare-go/internal/ratelimit"
)

// Service is the facade the handlers call.
type Service interface {
	Run(ctx context.Context, op domain.Operation) domain.Result
	Info(ctx context.Context) (operations.ToolInfo, error)
	Formats() operations.FormatCatalog
	Executable() (string, error)
}

// Options configures a Server. Zero values disable the optional layers.
type Options struct {
	CORSOrigins []string
	OIDC        OIDCConfig
	Budget      *ratelimit.ClientBudget
	Catalog     config.Catalog
	Version     string
}

// Server is the HTTP API server.
type Server struct {
	svc     Service
	opts    Options
	started time.Time
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server. When OIDC is enabled the issuer is contacted for
// discovery, so ctx bounds that call.
func New(ctx context.Context, svc Service, opts Options) (*Server, error) {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{svc: svc, opts: opts, started: time.Now(), mux: http.NewServeMux()}
	s.routes()

	var h http.Handler = s.mux
	if opts.Budget != nil {
		h = budget(opts.Budget, h)
	}
	if opts.OIDC.Enabled {
		provider, err := oidc.NewProvider(ctx, opts.OIDC.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("api: oidc discovery for %s: %w", opts.OIDC.IssuerURL, err)
		}
		h = oidcAuth(provider, opts.OIDC.Audience)(h)
	}
	s.handler = requestID(logging(cors(opts.CORSOrigins, h)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/v1/info", s.handleInfo)
	s.mux.HandleFunc("GET /api/v1/formats", s.handleFormats)
	s.mux.HandleFunc("POST /api/v1/operations/{name}", s.handleOperation)
	s.mux.HandleFunc("POST /api/v1/fileinfo", s.handleFileInfo)
}
