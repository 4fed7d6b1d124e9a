// Package http exposes the gateway over HTTP.
//
// # Endpoints
//
//	POST   /upload    multipart field "file"; optional "path" and "addinfo" headers
//	GET    /download  ?path=<relative key>; returns a presigned URL and the object's tags
//	DELETE /delete    ?path=<relative key>
//	GET    /healthz   liveness check, no authentication
//	GET    /metrics   Prometheus metrics when enabled, no authentication
//
// Every gateway endpoint requires HTTP Basic credentials. The authenticated
// username selects the caller's namespace in the bucket, so a caller can
// never address another caller's objects.
//
// Errors are returned as JSON objects of the form {"detail": "..."}.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Authenticator: auth,
//	    Metrics:       http.NewMetrics(),
//	}, gateway)
//	srv := &nethttp.Server{Addr: ":8000", Handler: handler.Router()}
package http
