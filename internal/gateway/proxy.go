// Package gateway fronts the identity, listing and user services with a
// single public entrypoint. Requests keep their Authorization header;
// downstream services validate the access token themselves, so a caller
// can never forge identity by injecting headers at the edge.
package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/response"
)

// Route maps a public path prefix onto a backend service.
type Route struct {
	// Prefix is the public path prefix, e.g. "/auth-route".
	Prefix string
	// Target is the backend base URL.
	Target string
	// StripPrefix removes the public prefix before forwarding.
	StripPrefix bool
}

// Proxy forwards matched requests to backend services.
type Proxy struct {
	routes []proxyRoute
	logger *zap.Logger
}

type proxyRoute struct {
	prefix  string
	strip   bool
	handler *httputil.ReverseProxy
}

// NewProxy builds a reverse proxy for the given routes.
func NewProxy(routes []Route, logger *zap.Logger) (*Proxy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Proxy{logger: logger}
	for _, r := range routes {
		target, err := url.Parse(r.Target)
		if err != nil {
			return nil, fmt.Errorf("parse target %q: %w", r.Target, err)
		}

		rp := httputil.NewSingleHostReverseProxy(target)
		rp.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
			logger.Error("backend request failed",
				zap.String("path", req.URL.Path),
				zap.String("target", target.Host),
				zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_GATEWAY","message":"upstream service unavailable","status":502}}`))
		}

		p.routes = append(p.routes, proxyRoute{prefix: r.Prefix, strip: r.StripPrefix, handler: rp})
	}
	return p, nil
}

// Handler returns a gin handler that forwards the request to the backend
// owning its path prefix.
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, r := range p.routes {
			if !strings.HasPrefix(path, r.prefix) {
				continue
			}
			req := c.Request
			if r.strip {
				rest := strings.TrimPrefix(path, r.prefix)
				if rest == "" {
					rest = "/"
				}
				req.URL.Path = rest
			}
			r.handler.ServeHTTP(c.Writer, req)
			c.Abort()
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no backend for path"))
		c.Abort()
	}
}
