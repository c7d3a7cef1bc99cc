// Package handler provides the HTTP handlers and router of the ambassador API.
//
// Handlers are grouped by feature area (auth, missions, resources, admin).
// Each handler struct depends on a small service interface declared next to
// it, so tests substitute func-field mocks.
//
// # Handler Pattern
//
//   - Constructor function (NewXxxHandler) accepts the service it needs
//   - Request bodies go through decodeAndValidate: malformed JSON is a 400,
//     validator/v10 tag failures and Validate() hooks are a 422
//   - Service errors go through MapServiceError to RFC 9457 Problem Details
//   - Path ids accept a bare key ("abc") or a full record id ("mission:abc")
//
// # Routes
//
// NewRouter wires every route under /api. Account routes are mounted at both
// /api/auth and /api/ambassadors. Learning resources live under
// /api/ressources. Mission and resource writes and everything under
// /api/admin require the admin role.
//
//	router := handler.NewRouter(handler.RouterConfig{
//	    Auth:      handler.NewAuthHandler(authService),
//	    Missions:  handler.NewMissionHandler(missionService),
//	    Resources: handler.NewResourceHandler(resourceService),
//	    Admin:     handler.NewAdminHandler(adminService),
//	    DB:        db,
//	    ...
//	})
//
// # Authentication
//
// Authenticated handlers read the caller with middleware.GetAmbassadorID(r)
// and answer 401 when it is missing.
package handler
