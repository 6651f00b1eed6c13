package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"thesisrepo/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingMiddleware(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/api/theses/:id", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(9))
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/api/broken", func(c *fiber.Ctx) error {
		return fiber.NewError(http.StatusServiceUnavailable, "down")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/theses/42", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/broken", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	thesis := spans[0]
	assert.Equal(t, "GET /api/theses/:id", thesis.Name())
	attrs := attribute.NewSet(thesis.Attributes()...)
	id, ok := attrs.Value(observability.AttrThesisID)
	require.True(t, ok)
	assert.Equal(t, int64(42), id.AsInt64())
	uid, ok := attrs.Value(observability.AttrUserID)
	require.True(t, ok)
	assert.Equal(t, int64(9), uid.AsInt64())
	route, _ := attrs.Value("http.route")
	assert.Equal(t, "/api/theses/:id", route.AsString())
	assert.NotEqual(t, codes.Error, thesis.Status().Code)

	broken := spans[1]
	assert.Equal(t, "GET /api/broken", broken.Name())
	brokenAttrs := attribute.NewSet(broken.Attributes()...)
	status, _ := brokenAttrs.Value("http.response.status_code")
	assert.Equal(t, int64(http.StatusServiceUnavailable), status.AsInt64())
	assert.Equal(t, codes.Error, broken.Status().Code)
}

func TestThesisIDParam(t *testing.T) {
	app := fiber.New()
	var got []uint
	record := func(c *fiber.Ctx) error {
		id, ok := thesisIDParam(c, c.Route().Path)
		if ok {
			got = append(got, id)
		}
		return nil
	}
	app.Get("/api/theses/:id/comments", record)
	app.Get("/api/favorites/:thesisId/check", record)
	app.Get("/api/comments/:id", record)

	for _, path := range []string{
		"/api/theses/3/comments",
		"/api/favorites/5/check",
		"/api/comments/7",
		"/api/theses/x/comments",
	} {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}
	assert.Equal(t, []uint{3, 5}, got)
}
