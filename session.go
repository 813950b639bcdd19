package main

// session is the identity/bearer-token pair for a signed-in user. Both fields
// are always persisted or cleared together; a session with only one of them is
// treated as logged out.
type session struct {
	UserID    string `json:"userId"`
	AuthToken string `json:"authToken"`
}

func (s session) valid() bool {
	return s.UserID != "" && s.AuthToken != ""
}

type sessionStore struct {
	kv     keyValueStore
	events *eventLogger
}

func newSessionStore(kv keyValueStore, events *eventLogger) *sessionStore {
	return &sessionStore{kv: kv, events: events}
}

// Load never fails to the caller. An unreadable store reads as logged out; the
// error goes to the event stream instead.
func (s *sessionStore) Load() session {
	userID, ok, err := s.kv.Get(userIDKey)
	if err != nil {
		s.events.Error("session_read_failed", err)
		return session{}
	}
	if !ok {
		return session{}
	}
	token, ok, err := s.kv.Get(authTokenKey)
	if err != nil {
		s.events.Error("session_read_failed", err)
		return session{}
	}
	if !ok {
		return session{}
	}
	return session{UserID: userID, AuthToken: token}
}

// Save persists both fields in one store call so a concurrent reader can never
// observe a torn session.
func (s *sessionStore) Save(userID, authToken string) error {
	return s.kv.SetMany(map[string]string{
		userIDKey:    userID,
		authTokenKey: authToken,
	})
}

// Clear removes both fields. Clearing an already-absent session succeeds.
func (s *sessionStore) Clear() error {
	return s.kv.Remove(userIDKey, authTokenKey)
}

// Token re-reads the bearer token from the store. Outbound API calls read it
// fresh before every request rather than caching it for the popup's lifetime.
func (s *sessionStore) Token() (string, bool) {
	token, ok, err := s.kv.Get(authTokenKey)
	if err != nil {
		s.events.Error("token_read_failed", err)
		return "", false
	}
	return token, ok && token != ""
}
