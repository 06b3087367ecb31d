// Package mongostore implements the tabular store contract on MongoDB.
//
// Token uniqueness for the sessions collection relies on unique indexes on
// access_token and refresh_token; create them once at deploy time:
//
//	db.sessions.createIndex({access_token: 1}, {unique: true})
//	db.sessions.createIndex({refresh_token: 1}, {unique: true})
//	db.sessions.createIndex({user_id: 1})
//	db.sessions.createIndex({expires_at: 1})
package mongostore
