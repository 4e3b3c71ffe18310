package router

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greeting-card-go/internal/greeting"
	"greeting-card-go/internal/handler"
	"greeting-card-go/internal/metrics"
	"greeting-card-go/internal/notifier"
	"greeting-card-go/internal/store"
	"greeting-card-go/web"
)

func newHandlers(t *testing.T) *handler.Handlers {
	t.Helper()
	st, err := store.NewJSONFileStore(filepath.Join(t.TempDir(), "greetings.json"))
	require.NoError(t, err)
	logger, _ := logtest.NewNullLogger()
	n := notifier.NewLogNotifier(notifier.Composer{PublicURL: "http://localhost:3001"}, logger)
	svc := greeting.NewService(st, n, metrics.NewMetrics(prometheus.NewRegistry()), time.Second)
	return handler.NewHandlers(svc, nil)
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSetupRouterServesPages(t *testing.T) {
	assets := fstest.MapFS{
		"index.html":    {Data: []byte("<h1>form</h1>")},
		"view.html":     {Data: []byte("<h1>detail</h1>")},
		"assets/app.js": {Data: []byte("console.log('app')")},
	}
	r, err := SetupRouter(newHandlers(t), assets)
	require.NoError(t, err)

	for path, want := range map[string]string{
		"/":           "<h1>form</h1>",
		"/index.html": "<h1>form</h1>",
		"/view":       "<h1>detail</h1>",
		"/view.html":  "<h1>detail</h1>",
	} {
		w := get(r, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, w.Body.String(), path)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	}

	w := get(r, "/assets/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log('app')", w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/api/health").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/missing").Code)
}

func TestSetupRouterMissingPage(t *testing.T) {
	_, err := SetupRouter(newHandlers(t), fstest.MapFS{
		"index.html": {Data: []byte("form")},
	})
	assert.ErrorContains(t, err, "view.html")
}

func TestSetupRouterEmbeddedClient(t *testing.T) {
	r, err := SetupRouter(newHandlers(t), web.Public())
	require.NoError(t, err)

	assert.Contains(t, get(r, "/").Body.String(), `id="greetingsList"`)
	assert.Contains(t, get(r, "/view?id=abc").Body.String(), `id="greetingCard"`)
	assert.Equal(t, http.StatusOK, get(r, "/assets/app.js").Code)
	assert.Equal(t, http.StatusOK, get(r, "/assets/style.css").Code)
}

func TestWithCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := WithCORS(next, []string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/api/greetings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/greetings", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)
}
