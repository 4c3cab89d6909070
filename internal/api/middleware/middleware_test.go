package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2help/h2h-api/internal/pkg/jwthelper"
)

const key = "middleware-test-key"

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"user_id": ctx.GetUint(ContextUserID)})
	})
	return r
}

func TestVerifyJWT(t *testing.T) {
	r := newEngine(NewAuthenticator(key).VerifyJWT())

	valid, err := jwthelper.GenerateToken([]byte(key), 42, "test")
	require.NoError(t, err)
	foreign, err := jwthelper.GenerateToken([]byte("other-key"), 42, "test")
	require.NoError(t, err)

	tests := map[string]struct {
		header string
		status int
	}{
		"valid":        {header: "Bearer " + valid, status: http.StatusOK},
		"lowercase":    {header: "bearer " + valid, status: http.StatusOK},
		"missing":      {header: "", status: http.StatusUnauthorized},
		"no scheme":    {header: valid, status: http.StatusUnauthorized},
		"wrong scheme": {header: "Basic " + valid, status: http.StatusUnauthorized},
		"empty token":  {header: "Bearer ", status: http.StatusUnauthorized},
		"wrong key":    {header: "Bearer " + foreign, status: http.StatusUnauthorized},
		"not a jwt":    {header: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id": 42}`, w.Body.String())
			}
		})
	}
}

func TestConfigCORS(t *testing.T) {
	r := newEngine(ConfigCORS([]string{"https://app.example.org"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestConfigCORSAllowsAllWhenUnset(t *testing.T) {
	r := newEngine(ConfigCORS(nil))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anywhere.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogger(t *testing.T) {
	r := newEngine(requestid.New(), Logger())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
