// Package auth provides the credential side of the API: accounts, bearer
// tokens and the middleware that guards /api/book.
//
// Passwords are stored as bcrypt hashes. A successful login issues an HS256
// JWT whose subject is the user id and whose jti identifies the token, so a
// logout can revoke that one token until it would have expired anyway.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<hex>          # Auto-generated if empty (tokens die on restart)
//	AUTH_TOKEN_EXPIRY=720h         # Bearer token lifetime
//	AUTH_BCRYPT_COST=12            # bcrypt cost factor
//	AUTH_MAX_LOGIN_ATTEMPTS=5      # Failures before lockout
//	AUTH_RATE_LIMIT_WINDOW=15m
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	tokens := auth.NewTokenManager(secret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
//	authService := auth.NewService(usersRepo, tokensRepo, tokens, cfg.Auth)
//	middleware := auth.NewMiddleware(authService)
//	api.Use(middleware.RequireBearer())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
