// Package fixtures creates ambassadors, missions and resources with sensible
// defaults through the real repositories.
//
//	f := fixtures.New(tdb.DB)
//	bronze := f.CreateAmbassador(t)
//	gold := f.CreateAmbassador(t, fixtures.WithLevel(model.LevelGold))
//	mission := f.CreateMission(t, func(m *model.Mission) {
//	    m.RequiredLevel = model.LevelGold
//	})
//
// Every fixture ambassador has the password DefaultPassword.
package fixtures
