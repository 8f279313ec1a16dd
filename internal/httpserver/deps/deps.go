package deps

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/store"
	"github.com/MrSnakeDoc/bindery/internal/upload"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time                // for testing, defaults to time.Now
	AllowedCIDRS   []string                        // IPs allowed to access healthz/readyz/infra endpoints
	AllowedOrigins []string                        // CORS origins for /api
	TrustProxy     bool                            // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Catalog        *catalog.Service                // create/edit/delete/list use cases
	Store          store.Store                     // entry store, pinged by readyz/infra
	StoreName      string                          // "redis" | "postgres" | "memory"
	Uploader       upload.Uploader                 // image host
	MaxUploadBytes int64                           // cap on a multipart submission
	WriteLimit     func(http.Handler) http.Handler // shared rate limiter for write routes, nil = none
	Heartbeat      time.Duration                   // SSE keepalive interval, defaults to 30s
	Shutdown       <-chan struct{}                 // closed when the server starts shutting down
}
