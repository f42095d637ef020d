/*
The middleware package defines what a middleware is in portaria and a set of basic middlewares.

The available middlewares are:
- CORS
- CurrentUser
- ForceHTTPS
- Idempotent
- InjectIPAddress
- InjectSession
- LogRequest
- RateLimit
- ReportPanic
- RequestID
- RequireAuthed
- RequireUnauthed

Due to the amount of configuration required, middleware does not provide a default middleware chain.
Instead, the following can be copy-pasted:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.RateLimit(vs),
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(log),
		middleware.InjectSession(sessionStore),
		middleware.CurrentUser(responder, userLoader),
	}
*/
package middleware
