// Package authsdk is the Go client for the jobfolio auth service.
//
// The Client handles unauthenticated operations (login, invite redemption)
// and produces Sessions. A Session holds the in-memory access token and
// transparently refreshes it, using the refresh cookie kept in the client's
// cookie jar, when a request comes back 401 or 403. Concurrent callers that
// hit an expired token at the same time trigger exactly one refresh request;
// the rest reuse the token it produced.
//
// Typical use:
//
//	client, err := authsdk.NewClient("https://auth.internal:8080")
//	if err != nil { ... }
//
//	session, err := client.Login(ctx, "admin@example.com", password, true)
//	if err != nil { ... }
//
//	me, err := session.Me(ctx)
//
// Failed refreshes clear the session token and surface the original error,
// so callers see the 401 that started it, not a refresh artifact. Transport
// errors are returned as-is and never trigger a refresh: without a response
// there is no evidence the token was the problem.
package authsdk
