// Package middleware provides HTTP middleware for the API server.
//
// Middleware is composed with Chain and applied outermost-first:
//
//	handler = middleware.Chain(mux,
//		middleware.Recovery,
//		middleware.RequestID,
//		middleware.Logger(logger),
//		middleware.CORS(origins),
//		middleware.Auth(verifier),
//	)
//
// Auth puts the verified principal into the request context; handlers read
// it back with GetUserID and GetPrincipal. Authorization decisions beyond
// authentication live in the service layer.
package middleware
