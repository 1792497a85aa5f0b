package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sddportal/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup_AppliesMiddlewareToAPIOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "up") })

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Header("X-Api", "1")
		c.Next()
	})
	r.Register(NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	}))
	api := r.Setup()
	assert.Equal(t, "/api/v1", api.BasePath())

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Api"))

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	ok := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}

	group := NewDomainGroup("uploads", "/uploads").
		Use(func(c *gin.Context) {
			c.Header("X-Group", "uploads")
			c.Next()
		}).
		POST("", ok("create")).
		GET("/:id", ok("get")).
		DELETE("/:id", ok("delete"))
	group.Group("records", "/:id/records").DELETE("/:index", ok("delete-record"))

	assert.Equal(t, "uploads", group.Name())
	assert.Equal(t, "/uploads", group.Prefix())

	engine := gin.New()
	r := NewRouter(engine)
	r.Register(group)
	r.Setup()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/uploads", "create"},
		{http.MethodGet, "/api/v1/uploads/abc", "get"},
		{http.MethodDelete, "/api/v1/uploads/abc", "delete"},
		{http.MethodDelete, "/api/v1/uploads/abc/records/3", "delete-record"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, "uploads", w.Header().Get("X-Group"))
		})
	}

	assert.Equal(t, []RouteInfo{
		{http.MethodPost, "/api/v1/uploads"},
		{http.MethodGet, "/api/v1/uploads/:id"},
		{http.MethodDelete, "/api/v1/uploads/:id"},
		{http.MethodDelete, "/api/v1/uploads/:id/records/:index"},
	}, group.Routes("/api/v1"))
}

func TestPortalRoutes(t *testing.T) {
	uploads := handler.NewUploadHandler(nil, 0)
	submissions := handler.NewSubmissionHandler(nil, nil, nil, 0)
	system := handler.NewSystemHandler("sdd-portal", "test", nil)

	var routes []RouteInfo
	for _, g := range []*DomainGroup{UploadRoutes(uploads, submissions), RowRoutes(submissions), SystemRoutes(system)} {
		routes = append(routes, g.Routes("/api/v1")...)
	}

	for _, want := range []RouteInfo{
		{http.MethodPost, "/api/v1/rows/:uploadId/:rowIndex/submit"},
		{http.MethodPost, "/api/v1/uploads/:id/void-approved"},
		{http.MethodPost, "/api/v1/uploads"},
		{http.MethodGet, "/api/v1/uploads"},
		{http.MethodGet, "/api/v1/uploads/:id"},
		{http.MethodDelete, "/api/v1/uploads/:id"},
		{http.MethodDelete, "/api/v1/uploads/:id/records/:index"},
		{http.MethodGet, "/api/v1/system/ping"},
	} {
		assert.Contains(t, routes, want)
	}

	engine := gin.New()
	r := NewRouter(engine)
	require.NotPanics(t, func() {
		r.Register(UploadRoutes(uploads, submissions)).
			Register(RowRoutes(submissions)).
			Register(SystemRoutes(system)).
			Setup()
	}, "routes must not conflict")
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/system/ping").Code)
}
