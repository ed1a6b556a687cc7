package esiclient

import (
	"fmt"
	"sync"

	"github.com/evesaga/evesaga/internal/ids"
)

// Character holds one registered character's ESI bearer credential. The
// interactive OAuth2 authorization-code exchange itself is sketched only
// per Non-goals; this store is the point-lookup table the rest of the
// saga consults once a token is in hand.
type Character struct {
	CharacterID   ids.CharacterId
	CharacterName string
	AccessToken   string
}

// CharacterStore is a mutex-guarded table of registered characters, held
// only for point lookups — never for the duration of a network call.
type CharacterStore struct {
	mu         sync.Mutex
	characters map[ids.CharacterId]Character
}

// NewCharacterStore builds an empty CharacterStore.
func NewCharacterStore() *CharacterStore {
	return &CharacterStore{characters: make(map[ids.CharacterId]Character)}
}

// Add registers or replaces a character's credential.
func (s *CharacterStore) Add(c Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[c.CharacterID] = c
}

// Get returns the credential for characterID, or an error if unregistered.
func (s *CharacterStore) Get(characterID ids.CharacterId) (Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[characterID]
	if !ok {
		return Character{}, fmt.Errorf("character %d is not registered", characterID)
	}
	return c, nil
}

// List returns a snapshot of every registered character.
func (s *CharacterStore) List() []Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Character, 0, len(s.characters))
	for _, c := range s.characters {
		out = append(out, c)
	}
	return out
}

func bearerHeader(accessToken string) string {
	return "Bearer " + accessToken
}
