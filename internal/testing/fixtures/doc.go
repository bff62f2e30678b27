// Package fixtures provides test data factories for the Commons API.
//
// The fixtures package contains factory functions for creating test data
// with sensible defaults and optional customization.
//
// # Factory Pattern
//
// Create a factory with a database connection:
//
//	f := fixtures.New(tdb.Store)
//
// # Creating Test Data
//
// Factory methods create domain entities:
//
//	user := f.CreateUser(t)            // verified doctor by default
//	mod := f.CreateModerator(t)
//	forum := f.CreateForum(t, user)    // forum owned by user
//	f.AddMember(t, mod, forum)
//	post := f.CreatePost(t, forum, user)
//
// # Customization
//
// Use option functions for customization:
//
//	user := f.CreateUser(t, func(o *fixtures.UserOpts) {
//	    o.Role = model.RoleUnverified
//	})
//
// # Cleanup
//
// Test data is cleaned up when the test database is closed.
package fixtures
