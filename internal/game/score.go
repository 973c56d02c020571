package game

import (
	"math"
	"sort"

	"github.com/skribly/skribly-backend/internal"
)

const (
	// guessBaseScore is awarded for any correct guess; guessSpeedBonus is
	// added per whole second left on the draw clock.
	guessBaseScore  = 100
	guessSpeedBonus = 5

	// drawerAllGuessedBonus goes to the drawer when every guesser got the
	// word before time ran out.
	drawerAllGuessedBonus = 50
)

// guessScore computes the points for a correct guess with timeRemaining
// seconds left.
func guessScore(timeRemaining float64) (score, speedBonus int) {
	if timeRemaining < 0 {
		timeRemaining = 0
	}
	speedBonus = int(math.Floor(timeRemaining)) * guessSpeedBonus
	return guessBaseScore + speedBonus, speedBonus
}

// resolveResults turns a scores map into a leaderboard sorted by score
// descending, ties broken by username for stable output.
func (e *Engine) resolveResults(scores map[string]int) []internal.TurnResult {
	results := make([]internal.TurnResult, 0, len(scores))
	for sid, score := range scores {
		results = append(results, internal.TurnResult{
			PlayerID: sid,
			Username: e.reg.Username(sid),
			Score:    score,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Username < results[j].Username
	})
	return results
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
