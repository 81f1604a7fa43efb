package models

// SystemSession is the identity used for provider callbacks, which are
// authenticated by signature rather than by a user token.
func SystemSession() Session {
	return Session{Role: RoleAdmin}
}
