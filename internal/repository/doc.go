// Package repository implements the data access layer for the ambassador API.
//
// Each repository wraps a database.Database and maps SurrealDB records to
// model structs. Record ids are always passed in full form ("mission:abc")
// and bound through type::record() so callers never build SurrealQL by
// string concatenation.
//
// # Lookups
//
// GetBy* methods return (nil, nil) when the record does not exist. Callers
// decide which sentinel error that becomes.
//
//	repo := NewMissionRepository(db)
//	m, err := repo.GetByID(ctx, "mission:abc")
//	if err != nil {
//	    return err
//	}
//	if m == nil {
//	    // not found
//	}
//
// # Credits
//
// Anything that credits an ambassador runs as one batched transaction:
//
//   - AmbassadorRepository.Create stores the new account and credits the
//     referrer
//   - MissionRepository.Complete appends the completion, updates statistics
//     and points, and records the token reward
//   - ResourceRepository.Complete marks the resource done and adds its points
//
// The completion transactions start with a guard statement that THROWs when
// the ambassador already completed the item. That failure is reported as
// ErrAlreadyCompleted so a concurrent duplicate never double-credits.
package repository
