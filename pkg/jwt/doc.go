// Package jwt issues and verifies the bearer tokens used by the ambassador API.
//
// Tokens are HS256-signed with a shared secret and carry the ambassador's
// record id and role. Verification is stateless:
//
//	svc, err := jwt.NewService(jwt.Config{
//	    Secret:          os.Getenv("JWT_SECRET"),
//	    Issuer:          "ambassador-api",
//	    ExpirationHours: 24,
//	})
//
//	token, err := svc.Sign(jwt.Claims{AmbassadorID: "ambassador:abc"})
//	claims, err := svc.Validate(token)
//
// Validate normalizes library errors into ErrTokenExpired, ErrTokenNotYetValid,
// ErrInvalidSignature and ErrInvalidToken so the HTTP layer can report
// "expired" separately from "invalid".
package jwt
