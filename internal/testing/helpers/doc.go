// Package helpers holds the request builders and testify-backed assertions
// shared by handler and repository tests.
//
// Tokens come from a JWTHelper whose Service must be the verifier wired into
// the router under test:
//
//	jh := helpers.NewJWTHelper(t)
//	req := helpers.NewRequest(t, http.MethodPost, "/api/missions/x/complete").
//	    WithBody(model.CompleteMissionRequest{Proof: "https://x.test/post"}).
//	    WithAuth(jh, ambassador).
//	    Build()
//
// Responses are checked with AssertStatus, AssertProblemDetails and
// AssertValidationError, or decoded with Decode. AssertRecordExists and
// AssertRecordNotExists look records up in a testdb database.
package helpers
