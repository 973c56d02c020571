package words

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skribly/skribly-backend/internal"
)

func TestNewFallsBackWithoutFiles(t *testing.T) {
	s := New(t.TempDir())

	stats := s.Stats()
	assert.Greater(t, stats["easy"], 0)
	assert.Greater(t, stats["medium"], 0)
	assert.Greater(t, stats["hard"], 0)
}

func TestNewLoadsJSONLists(t *testing.T) {
	dir := t.TempDir()
	raw, err := json.Marshal([]string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "easy.json"), raw, 0o644))

	s := New(dir)
	assert.Equal(t, 3, s.Stats()["easy"])
	assert.True(t, s.IsValid("alpha", internal.DifficultyEasy))
	// medium.json was absent, so the fallback list serves it
	assert.Greater(t, s.Stats()["medium"], 3)
}

func TestRandomWordsDistinct(t *testing.T) {
	s := New(t.TempDir())

	for i := 0; i < 20; i++ {
		ws := s.RandomWords(internal.DifficultyMedium, 3)
		require.Len(t, ws, 3)
		seen := make(map[string]bool)
		for _, w := range ws {
			assert.False(t, seen[w], "duplicate word %q in options", w)
			seen[w] = true
			assert.True(t, s.IsValid(w, internal.DifficultyMedium))
		}
	}
}

func TestRandomWordsShortList(t *testing.T) {
	dir := t.TempDir()
	raw, _ := json.Marshal([]string{"one", "two"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hard.json"), raw, 0o644))

	s := New(dir)
	ws := s.RandomWords(internal.DifficultyHard, 3)
	assert.ElementsMatch(t, []string{"one", "two"}, ws)
}

func TestIsValid(t *testing.T) {
	s := New(t.TempDir())

	assert.True(t, s.IsValid("cat", internal.DifficultyEasy))
	assert.True(t, s.IsValid("CAT", internal.DifficultyEasy))
	assert.False(t, s.IsValid("cat", internal.DifficultyHard))
	assert.False(t, s.IsValid("cat", internal.WordDifficulty("nightmare")))
	assert.False(t, s.IsValid("", internal.DifficultyEasy))
}

func TestRandomWord(t *testing.T) {
	s := New(t.TempDir())
	w := s.RandomWord(internal.DifficultyEasy)
	assert.True(t, s.IsValid(w, internal.DifficultyEasy))
}
