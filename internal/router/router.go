package router

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"greeting-card-go/internal/handler"
)

// SetupRouter configures the Gin router with API routes, the client pages
// served from assets, and middleware
func SetupRouter(h *handler.Handlers, assets fs.FS) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggerMiddleware())
	h.SetupRoutes(r)

	if err := registerClient(r, assets); err != nil {
		return nil, err
	}
	return r, nil
}

// WithCORS wraps next with CORS handling for the given origins
func WithCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(next)
}

func registerClient(r *gin.Engine, assets fs.FS) error {
	pages := map[string][]string{
		"index.html": {"/", "/index.html"},
		"view.html":  {"/view", "/view.html"},
	}
	for file, paths := range pages {
		data, err := fs.ReadFile(assets, file)
		if err != nil {
			return fmt.Errorf("failed to read page %s: %w", file, err)
		}
		for _, p := range paths {
			r.GET(p, servePage(data))
		}
	}

	static, err := fs.Sub(assets, "assets")
	if err != nil {
		return fmt.Errorf("failed to open static assets: %w", err)
	}
	r.StaticFS("/assets", http.FS(static))
	return nil
}

func servePage(data []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
}

func loggerMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	})
}
