package words

import "strings"

const (
	hintFirstRevealAfter = 10 // seconds into the turn before the first reveal
	hintRevealInterval   = 10
	hintMaxReveals       = 3
)

// MaskedWord is the fully-hidden rendering of a word: one underscore per
// letter, spaces excluded. Used by word_selected and drawing_started.
func MaskedWord(word string) string {
	n := len(strings.ReplaceAll(word, " ", ""))
	return strings.Repeat("_", n)
}

// RevealCount maps elapsed turn time to the number of letters revealed:
// 0 before 10s, then one more letter every 10s, capped at 3.
func RevealCount(elapsedSeconds float64) int {
	if elapsedSeconds < hintFirstRevealAfter {
		return 0
	}
	n := int(elapsedSeconds-hintFirstRevealAfter)/hintRevealInterval + 1
	if n > hintMaxReveals {
		n = hintMaxReveals
	}
	return n
}

// letterPositions lists the indices of non-space characters in word.
func letterPositions(word string) []int {
	pos := make([]int, 0, len(word))
	for i := 0; i < len(word); i++ {
		if word[i] != ' ' {
			pos = append(pos, i)
		}
	}
	return pos
}

// revealedPositions picks which letters to uncover: first, then last, then
// middle. Deterministic so repeated hints for the same word never regress.
func revealedPositions(word string, count int) []int {
	letters := letterPositions(word)
	revealed := make([]int, 0, hintMaxReveals)
	if count >= 1 && len(letters) >= 1 {
		revealed = append(revealed, letters[0])
	}
	if count >= 2 && len(letters) >= 2 {
		revealed = append(revealed, letters[len(letters)-1])
	}
	if count >= 3 && len(letters) >= 3 {
		revealed = append(revealed, letters[len(letters)/2])
	}
	return revealed
}

// HintWithPositions renders word with the given indices revealed (uppercase)
// and everything else masked, characters joined by spaces.
func HintWithPositions(word string, revealed []int) string {
	if word == "" {
		return ""
	}
	isRevealed := make(map[int]bool, len(revealed))
	for _, i := range revealed {
		isRevealed[i] = true
	}

	lower := strings.ToLower(word)
	parts := make([]string, 0, len(lower))
	for i := 0; i < len(lower); i++ {
		switch {
		case lower[i] == ' ':
			parts = append(parts, " ")
		case isRevealed[i]:
			parts = append(parts, strings.ToUpper(string(lower[i])))
		default:
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}

// ProgressiveHint is the hint shown to guessers after elapsedSeconds of the
// drawing phase.
func ProgressiveHint(word string, elapsedSeconds float64) string {
	if word == "" {
		return ""
	}
	count := RevealCount(elapsedSeconds)
	if count == 0 {
		return MaskedWord(word)
	}
	return HintWithPositions(word, revealedPositions(word, count))
}
