// Package service implements the business logic layer of the ambassador API.
//
// Services own eligibility rules and orchestrate repository calls. They
// define the repository interfaces they need, so unit tests substitute
// in-memory implementations.
//
// # Services
//
//   - AuthService: registration (with referral credit), login, profile, statistics
//   - TokenService: bearer token issuing and validation
//   - MissionService: availability, completion workflow, history, mission CRUD
//   - ResourceService: level-gated resources and first-time completion credit
//   - AdminService: promotion, point credits, badges, account activation
//
// # Error Handling
//
// Services return sentinel errors from errors.go, or a *ValidationError for
// field-level problems. Handlers translate both with errors.Is / errors.As:
//
//	result, err := missions.Complete(ctx, ambassadorID, missionID, proof)
//	if errors.Is(err, service.ErrMissionAlreadyCompleted) {
//	    // 400
//	}
//
// # Completion Order
//
// MissionService.Complete checks, in order: mission exists, ambassador
// exists, mission is available to the ambassador's level now, no prior
// completion, non-blank proof. The credit is then applied by a single
// guarded transaction in the repository layer.
package service
