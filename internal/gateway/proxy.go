// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/apperr"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/constants"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/ctxutil"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/respond"
)

// NewProxy builds a reverse proxy that relays /v1/* requests to one backend,
// rewritten to the backend's /api/* namespace.
//
// # Failure Mode
//
// A transport failure (refused connection, timeout) is a backend problem,
// reported to the client as 502 with a generic message. The cause stays in
// the server logs.
func NewProxy(backendURL string) (http.Handler, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid backend URL %q: %w", backendURL, err)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(request *httputil.ProxyRequest) {
			request.SetURL(target)
			request.SetXForwarded()
			request.Out.URL.Path = rewritePath(request.In.URL.Path)

			// Propagate correlation across the service boundary.
			if id := ctxutil.GetRequestID(request.In.Context()); id != "" {
				request.Out.Header.Set(constants.HeaderXRequestID, id)
			}
		},
		Transport: &http.Transport{
			ResponseHeaderTimeout: constants.ProxyTimeout,
		},
		ErrorHandler: func(writer http.ResponseWriter, request *http.Request, err error) {
			respond.Error(writer, request, apperr.UpstreamUnavailable(err))
		},
	}

	return proxy, nil
}

// rewritePath maps the public /v1 namespace onto the backend /api namespace.
func rewritePath(path string) string {
	if after, found := strings.CutPrefix(path, "/v1"); found {
		return "/api" + after
	}
	return path
}
