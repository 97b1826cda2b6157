package domain

// GameDocument is the full persisted record of one game instance: the shared
// interactive session and every player profile, stored together under a single
// key. The two aggregates are independent; they share a document, not state.
type GameDocument struct {
	Shared  SharedSession             `json:"shared"`
	Players map[string]*PlayerProfile `json:"players,omitempty"`
}

// NewGameDocument returns the initial document for a fresh instance.
func NewGameDocument() *GameDocument {
	return &GameDocument{
		Shared:  SharedSession{Page: PageHome},
		Players: make(map[string]*PlayerProfile),
	}
}

// Player looks up a profile by id.
func (d *GameDocument) Player(id string) (*PlayerProfile, bool) {
	p, ok := d.Players[id]
	return p, ok
}

// EnsurePlayer returns the profile for id, creating a zeroed one on first use.
func (d *GameDocument) EnsurePlayer(id, username string) *PlayerProfile {
	if d.Players == nil {
		d.Players = make(map[string]*PlayerProfile)
	}
	if p, ok := d.Players[id]; ok {
		if username != "" && p.Username != username {
			p.Username = username
		}
		return p
	}
	p := &PlayerProfile{ID: id, Username: username}
	d.Players[id] = p
	return p
}
