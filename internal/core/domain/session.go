package domain

// Session is a point-in-time copy of the console's session state.
type Session struct {
	User          *User  `json:"user"`
	Token         string `json:"-"`
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
}

// PersistedSession is the {user, token} pair kept in durable storage.
// Authenticated and Loading are derived or transient and never stored.
type PersistedSession struct {
	User  *User   `json:"user"`
	Token *string `json:"token"`
}
