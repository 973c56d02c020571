package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/registry"
)

func TestGuessScore(t *testing.T) {
	score, bonus := guessScore(44.6)
	assert.Equal(t, 320, score)
	assert.Equal(t, 220, bonus)

	score, bonus = guessScore(0)
	assert.Equal(t, 100, score)
	assert.Equal(t, 0, bonus)

	score, bonus = guessScore(-3)
	assert.Equal(t, 100, score)
	assert.Equal(t, 0, bonus)

	score, _ = guessScore(80)
	assert.Equal(t, 500, score)
}

func TestResolveResultsOrdering(t *testing.T) {
	reg := registry.New()
	alice, err := reg.CreateUser("alice", "")
	require.NoError(t, err)
	bob, err := reg.CreateUser("bobby", "")
	require.NoError(t, err)
	carol, err := reg.CreateUser("carol", "")
	require.NoError(t, err)

	e := NewEngine(reg, nil, &recorder{}, DefaultTimings())
	results := e.resolveResults(map[string]int{
		alice.SessionID: 120,
		bob.SessionID:   350,
		carol.SessionID: 120,
	})

	require.Len(t, results, 3)
	assert.Equal(t, internal.TurnResult{PlayerID: bob.SessionID, Username: "bobby", Score: 350}, results[0])
	// ties break alphabetically for stable output
	assert.Equal(t, "alice", results[1].Username)
	assert.Equal(t, "carol", results[2].Username)
}
