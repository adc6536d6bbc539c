package http

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/satriahrh/pixel-relay/adapters/hasher"
	"github.com/satriahrh/pixel-relay/adapters/llm"
	"github.com/satriahrh/pixel-relay/usecase"
)

type stubUpstream struct {
	srv    *httptest.Server
	bodies []string
}

func newStubUpstream(t *testing.T, status int, body string) *stubUpstream {
	t.Helper()
	s := &stubUpstream{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		s.bodies = append(s.bodies, string(data))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

var defaultOptions = ServerOptions{
	AllowOrigins: []string{"*"},
	RateLimit:    20,
	BodyLimit:    "1M",
}

func newServerWith(apiKey string, up *stubUpstream, opts ServerOptions) *echo.Echo {
	driver := llm.NewGeminiREST(apiKey, llm.WithBaseURL(up.srv.URL))
	svc := usecase.NewRelayService(driver, hasher.New(), usecase.Options{APIKey: apiKey})
	return NewServer(NewChatHandler(svc), opts)
}

func newServer(apiKey string, up *stubUpstream) *echo.Echo {
	return newServerWith(apiKey, up, defaultOptions)
}

func do(e *echo.Echo, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const successBody = `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`

func TestChatMethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			up := newStubUpstream(t, http.StatusOK, successBody)
			e := newServer("k", up)

			rec := do(e, method, `{"history":[]}`)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
			assert.Empty(t, up.bodies)
		})
	}
}

func TestChatMissingAPIKey(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	e := newServer("", up)

	rec := do(e, http.MethodPost, `{"history":[{"role":"user","text":"hola"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Server configuration error: API Key missing"}`, rec.Body.String())
	assert.Empty(t, up.bodies)
}

func TestChatSuccess(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	e := newServer("k", up)

	rec := do(e, http.MethodPost, `{"history":[
		{"role":"user","text":"a"},
		{"role":"bot","text":"b"},
		{"role":"model","text":"c"},
		{"role":"system","text":"d"}
	]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"hello"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")

	require.Len(t, up.bodies, 1)
	sent := gjson.Parse(up.bodies[0])
	assert.Equal(t, `["user","model","model","user"]`, sent.Get("contents.#.role").Raw)
	assert.Equal(t, `["a","b","c","d"]`, sent.Get("contents.#.parts.0.text").Raw)
}

func TestChatUpstreamError(t *testing.T) {
	up := newStubUpstream(t, http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`)
	e := newServer("k", up)

	rec := do(e, http.MethodPost, `{"history":[{"role":"user","text":"hola"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"quota exceeded"}`, rec.Body.String())
}

func TestChatUpstreamErrorWithoutMessage(t *testing.T) {
	up := newStubUpstream(t, http.StatusInternalServerError, `oops`)
	e := newServer("k", up)

	rec := do(e, http.MethodPost, `{"history":[{"role":"user","text":"hola"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := gjson.Get(rec.Body.String(), "error")
	assert.True(t, msg.Exists())
	assert.NotEmpty(t, msg.String())
}

func TestChatMalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"bad json":        `{"history":[`,
		"missing history": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			up := newStubUpstream(t, http.StatusOK, successBody)
			e := newServer("k", up)

			rec := do(e, http.MethodPost, body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotEmpty(t, gjson.Get(rec.Body.String(), "error").String())
			assert.Empty(t, up.bodies)
		})
	}
}

func TestChatIndependentRequests(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	e := newServer("k", up)

	first := do(e, http.MethodPost, `{"history":[{"role":"user","text":"uno"}]}`)
	second := do(e, http.MethodPost, `{"history":[{"role":"user","text":"dos"}]}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `{"text":"hello"}`, first.Body.String())
	assert.JSONEq(t, `{"text":"hello"}`, second.Body.String())

	require.Len(t, up.bodies, 2)
	assert.Equal(t, `["dos"]`, gjson.Get(up.bodies[1], "contents.#.parts.0.text").Raw)
}

func TestHealthCheck(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	e := newServer("k", up)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", gjson.Get(rec.Body.String(), "status").String())
}

func TestChatPreflightNotAllowed(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	e := newServer("k", up)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set(echo.HeaderOrigin, "https://pixel.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	assert.Empty(t, up.bodies)
}

func TestChatCORSHeaders(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	e := newServer("k", up)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"history":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderOrigin, "https://pixel.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestChatBodyTooLarge(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	opts := defaultOptions
	opts.BodyLimit = "1K"
	e := newServerWith("k", up, opts)

	big := `{"history":[{"role":"user","text":"` + strings.Repeat("a", 4096) + `"}]}`
	rec := do(e, http.MethodPost, big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request Entity Too Large"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
	assert.Empty(t, up.bodies)
}

func TestChatRateLimited(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	opts := defaultOptions
	opts.RateLimit = 1
	e := newServerWith("k", up, opts)

	first := do(e, http.MethodPost, `{"history":[]}`)
	second := do(e, http.MethodPost, `{"history":[]}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, second.Body.String())
	assert.Len(t, up.bodies, 1)
}

func TestUnknownRoute(t *testing.T) {
	up := newStubUpstream(t, http.StatusOK, successBody)
	e := newServer("k", up)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestJSONErrorHandlerPlainError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	jsonErrorHandler(errors.New("boom"), e.NewContext(req, rec))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}
