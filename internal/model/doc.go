// Package model holds the ambassador program's entities, the request and
// response bodies of the HTTP API, and its problem+json error type.
//
// An Ambassador earns points and tokens by completing Missions (time bounded,
// level gated, rewarded once) and Resources (level gated content, points
// only). Availability is computed on read and never stored:
//
//	mission.IsAvailableTo(ambassador.Level, time.Now())
//	resource.IsAvailableTo(ambassador.Level)
//
// Token amounts are shopspring/decimal values and marshal as quoted strings.
//
// Request bodies are checked twice: validator/v10 tags first, then a
// Validate() []FieldError method for rules that involve several fields.
//
// Errors are ProblemDetails values with a numeric code. The thousands digit
// groups them: 1xxx authentication (1002 expired token, 1003 invalid token),
// 2xxx authorization, 3xxx resource state, 4xxx malformed requests and 5xxx
// server faults.
package model
