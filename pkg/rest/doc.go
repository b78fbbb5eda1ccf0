// Package rest provides a REST client whose calls are named by HTTP verb.
//
// # Overview
//
// A Client is bound to one server (scheme, host, port and API prefix) and an
// optional bearer token. Every call composes a URL from an endpoint, optional
// path segments and query parameters, dispatches it through a pooled,
// retrying session and returns a uniform Response record.
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/restverb/pkg/rest"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := rest.New(&rest.Config{Host: "example.com", Token: "secret"})
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  // GET https://example.com:443/api/users/42?fields=name
//	  resp, err := cli.Get(ctx, "users", rest.WithSegments("42"), rest.WithParam("fields", "name"))
//	  if err != nil { log.Fatal(err) }
//	  _ = resp.Data
//	}
//
// # Verbs
//
// The verb table is closed: get, post, put, patch, delete, head and options.
// Besides the static methods, a verb can be resolved from a name at run time:
//
//	call, err := cli.Method("get_devices") // GET {base}/devices/...
//	if rest.IsUnknownMember(err) { /* not a verb, nothing was sent */ }
//	resp, err := call(ctx, "status")
//
// Query is the explicit form taking the verb as a string; an empty verb means GET.
//
// # Responses and errors
//
// Any HTTP status is data: a 404 returns a Response with OK false and a nil
// error. An error is returned only for configuration problems, unknown verbs
// and transport failures. A transport failure (no response after all retries)
// returns both a *TransportError and a Response with StatusCode 0.
//
// # Simulation
//
// With Config.Simulation every call returns StatusCode 200, empty Data and OK
// true without touching the network. URLs are still built and logged.
//
// # Caching, metrics and tracing
//
// Config.Cache enables response caching for successful GET calls; see
// MemoryCache and NATSCache. Config.MetricsRegisterer records Prometheus
// metrics and every call runs in an OpenTelemetry client span.
//
// # Concurrency
//
// A Client may be shared between goroutines. Connections are pooled by the
// underlying session, token rotation through SetToken is mutex-guarded and
// all other state is read-only after New. Callers that need per-goroutine
// isolation of connections should create one Client each.
package rest
