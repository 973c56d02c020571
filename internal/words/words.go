package words

import (
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/skribly/skribly-backend/internal"
)

// Service supplies word options for drawers and validates guess targets.
// Word lists are read once at construction and immutable afterwards, so no
// locking is needed.
type Service struct {
	lists map[internal.WordDifficulty][]string
}

// New loads easy.json / medium.json / hard.json from dir. A missing or
// unreadable file falls back to the built-in list for that difficulty.
func New(dir string) *Service {
	s := &Service{lists: make(map[internal.WordDifficulty][]string)}

	for _, diff := range []internal.WordDifficulty{
		internal.DifficultyEasy, internal.DifficultyMedium, internal.DifficultyHard,
	} {
		path := filepath.Join(dir, string(diff)+".json")
		list, err := loadList(path)
		if err != nil {
			log.Printf("[words.New] %s: %v, using fallback words", path, err)
			list = fallbackWords[diff]
		} else {
			log.Printf("[words.New] loaded %d %s words from %s", len(list), diff, path)
		}
		s.lists[diff] = list
	}
	return s
}

func loadList(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) list(difficulty internal.WordDifficulty) []string {
	if l, ok := s.lists[difficulty]; ok {
		return l
	}
	return s.lists[internal.DifficultyMedium]
}

// RandomWords returns count distinct random words of the given difficulty.
// If the list is shorter than count the whole list is returned.
func (s *Service) RandomWords(difficulty internal.WordDifficulty, count int) []string {
	list := s.list(difficulty)
	if len(list) <= count {
		out := make([]string, len(list))
		copy(out, list)
		return out
	}
	perm := rand.Perm(len(list))
	out := make([]string, 0, count)
	for _, i := range perm[:count] {
		out = append(out, list[i])
	}
	return out
}

// RandomWord returns a single random word of the given difficulty.
func (s *Service) RandomWord(difficulty internal.WordDifficulty) string {
	ws := s.RandomWords(difficulty, 1)
	if len(ws) == 0 {
		return "drawing"
	}
	return ws[0]
}

// IsValid reports whether word exists in the given difficulty's list,
// case-insensitively.
func (s *Service) IsValid(word string, difficulty internal.WordDifficulty) bool {
	if _, ok := s.lists[difficulty]; !ok {
		return false
	}
	target := strings.ToLower(word)
	for _, w := range s.lists[difficulty] {
		if strings.ToLower(w) == target {
			return true
		}
	}
	return false
}

// Stats reports how many words are loaded per difficulty.
func (s *Service) Stats() map[string]int {
	out := make(map[string]int, len(s.lists))
	for diff, list := range s.lists {
		out[string(diff)] = len(list)
	}
	return out
}

var fallbackWords = map[internal.WordDifficulty][]string{
	internal.DifficultyEasy: {
		"cat", "dog", "fish", "bird", "car", "tree", "house", "sun", "moon", "star",
		"ball", "book", "pen", "cup", "hat", "cake", "apple", "egg", "bee", "key",
	},
	internal.DifficultyMedium: {
		"elephant", "giraffe", "butterfly", "dinosaur", "rainbow", "mountain", "guitar",
		"piano", "bicycle", "airplane", "sandwich", "pizza", "teacher", "doctor", "castle",
	},
	internal.DifficultyHard: {
		"cryptocurrency", "photosynthesis", "metamorphosis", "constellation", "entrepreneur",
		"procrastination", "refrigerator", "democracy", "philosophy", "magnificent",
	},
}
