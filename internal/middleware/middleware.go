package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Options struct {
	AuthToken    string
	NoAuthBypass bool
	// RateLimit disables per-IP limiting when false.
	RateLimit bool
}

// Chain runs every request through trace injection, bearer auth and the per-IP limiter
// before handing it to the route.
type Chain struct {
	opts    Options
	limiter *IPRateLimiter
	logger  *logger_i.Logger
}

func New(opts Options) *Chain {
	return &Chain{opts: opts, limiter: defaultLimiter(), logger: logger_i.NewLogger("middleware")}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
		}()

		re := c.processRequest(requestResponseStruct{req: r, writer: rec, logger: c.logger})
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)
	}
}

// Handler is Wrap for plain http.Handlers such as the MCP endpoint.
func (c *Chain) Handler(next http.Handler) http.Handler {
	return c.Wrap(next.ServeHTTP)
}

func (c *Chain) processRequest(re requestResponseStruct) requestResponseStruct {
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	re = c.authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	if c.opts.RateLimit {
		re = c.rateLimiter(re)
	}
	return re
}
