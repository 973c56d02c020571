package game

import "errors"

// Engine errors surface to clients verbatim as error events, so the text is
// written for players, not operators.
var (
	ErrNotInRoom         = errors.New("you are not in a room")
	ErrNotHost           = errors.New("only the host can start the game")
	ErrNotEnoughPlayers  = errors.New("need at least 2 players to start")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotYourTurn       = errors.New("it is not your turn to select a word")
	ErrWordRequired      = errors.New("no word provided")
	ErrInvalidWord       = errors.New("invalid word selected")
	ErrNotDrawing        = errors.New("word selection is not in progress")
	ErrDrawerCannotGuess = errors.New("you cannot guess on your own drawing")
	ErrAlreadyGuessed    = errors.New("you already guessed this word")
	ErrEmptyGuess        = errors.New("guess cannot be empty")
	ErrEmptyMessage      = errors.New("message cannot be empty")
	ErrMessageTooLong    = errors.New("message is too long")
	ErrNotYourTurnDraw   = errors.New("it is not your turn to draw")
	ErrCannotClear       = errors.New("only the drawer or host can clear the canvas")
	ErrInvalidStroke     = errors.New("invalid drawing coordinates")
	ErrInvalidBrushSize  = errors.New("brush size must be between 1 and 50")
	ErrInvalidTool       = errors.New("invalid tool")
)

// errSkip aborts a registry update without surfacing anything to the caller.
// Used when a timer or duplicate event arrives after the phase moved on.
var errSkip = errors.New("skip")
