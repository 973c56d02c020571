package internal

// Message is the wire envelope for every socket event, inbound and outbound.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound socket event names.
const (
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "join_room"
	EventLeaveRoom    = "leave_room"
	EventGetRoomInfo  = "get_room_info"
	EventStartGame    = "start_game"
	EventSelectWord   = "select_word"
	EventSubmitGuess  = "submit_guess"
	EventSendChat     = "send_chat_message"
	EventDrawStart    = "draw_start"
	EventDrawMove     = "draw_move"
	EventDrawEnd      = "draw_end"
	EventClearCanvas  = "clear_canvas"
	EventChangeTool   = "change_tool"
	EventTurnTimeout  = "turn_timeout"
)

// Outbound socket event names.
const (
	EventConnectionConfirmed  = "connection_confirmed"
	EventAuthSuccess          = "authentication_success"
	EventAuthFailed           = "authentication_failed"
	EventRoomJoined           = "room_joined"
	EventRoomLeft             = "room_left"
	EventRoomInfo             = "room_info"
	EventRoomUpdated          = "room_updated"
	EventPlayerJoined         = "player_joined"
	EventPlayerLeft           = "player_left"
	EventPlayerDisconnected   = "player_disconnected"
	EventGameStarted          = "game_started"
	EventRoundStarted         = "round_started"
	EventRoundComplete        = "round_complete"
	EventWordSelectionStarted = "word_selection_started"
	EventWordSelected         = "word_selected"
	EventDrawingStarted       = "drawing_started"
	EventHintUpdate           = "hint_update"
	EventTimerUpdate          = "timer_update"
	EventCorrectGuess         = "correct_guess"
	EventGuessCorrect         = "guess_correct"
	EventChatMessage          = "chat_message"
	EventDrawData             = "draw_data"
	EventCanvasCleared        = "canvas_cleared"
	EventToolChanged          = "tool_changed"
	EventTurnEnded            = "turn_ended"
	EventGameEnded            = "game_ended"
	EventError                = "error"
)

type ErrorData struct {
	Message string `json:"message"`
}

type ConnectionConfirmedData struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Status   string `json:"status"`
}

type AuthSuccessData struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type RoomJoinedData struct {
	Room EnrichedRoom `json:"room"`
	User User         `json:"user"`
}

type RoomInfoData struct {
	Room EnrichedRoom `json:"room"`
}

type RoomLeftData struct {
	Success bool   `json:"success"`
	RoomID  string `json:"room_id"`
}

// RoomUpdatedData announces a membership or lifecycle change; Event names
// what happened (player_joined, player_left, game_started, ...).
type RoomUpdatedData struct {
	Room  EnrichedRoom `json:"room"`
	Event string       `json:"event"`
}

type PlayerJoinedData struct {
	PlayerID string       `json:"player_id"`
	Username string       `json:"username"`
	Room     EnrichedRoom `json:"room"`
}

type PlayerLeftData struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	NewHost  string `json:"new_host,omitempty"`
}

type PlayerDisconnectedData struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

type GameStartedData struct {
	RoomID       string       `json:"room_id"`
	Room         EnrichedRoom `json:"room"`
	CurrentRound int          `json:"current_round"`
	TotalRounds  int          `json:"total_rounds"`
}

type TimerUpdateData struct {
	TimeRemaining int    `json:"time_remaining"`
	Phase         Phase  `json:"phase"`
	RoomID        string `json:"room_id"`
}

type RoundStartedData struct {
	Round       int    `json:"round"`
	Drawer      string `json:"drawer"`
	DrawerName  string `json:"drawer_name"`
	TotalRounds int    `json:"total_rounds"`
}

// WordSelectionStartedData is broadcast to the whole room; clients show the
// word slate to the drawer only.
type WordSelectionStartedData struct {
	DrawerID   string   `json:"drawer_id"`
	DrawerName string   `json:"drawer_name"`
	Words      []string `json:"words"`
	TimeLimit  int      `json:"time_limit"`
	Phase      Phase    `json:"phase"`
}

// WordSelectedData has two renditions: the drawer receives Word, everyone
// else receives WordHint/WordLength instead.
type WordSelectedData struct {
	Word         string `json:"word,omitempty"`
	WordHint     string `json:"word_hint,omitempty"`
	WordLength   int    `json:"word_length,omitempty"`
	TimeLimit    int    `json:"time_limit"`
	DrawerID     string `json:"drawer_id"`
	Phase        Phase  `json:"phase"`
	AutoSelected bool   `json:"auto_selected,omitempty"`
}

type DrawingStartedData struct {
	DrawerID   string `json:"drawer_id"`
	DrawerName string `json:"drawer_name"`
	WordHint   string `json:"word_hint"`
	WordLength int    `json:"word_length"`
	TimeLimit  int    `json:"time_limit"`
	Phase      Phase  `json:"phase"`
}

type HintUpdateData struct {
	WordHint    string  `json:"word_hint"`
	WordLength  int     `json:"word_length"`
	ElapsedTime float64 `json:"elapsed_time"`
	DrawerID    string  `json:"drawer_id"`
}

type CorrectGuessData struct {
	Player        string         `json:"player"`
	PlayerID      string         `json:"player_id"`
	Word          string         `json:"word"`
	Score         int            `json:"score"`
	SpeedBonus    int            `json:"speed_bonus"`
	Scores        map[string]int `json:"scores"`
	TimeElapsed   float64        `json:"time_elapsed"`
	TimeRemaining float64        `json:"time_remaining"`
}

type GuessCorrectData struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
	Word    string `json:"word"`
}

type ChatMessageData struct {
	User      string  `json:"user"`
	UserID    string  `json:"user_id"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}

// TurnResult is one row of the per-turn and final leaderboards.
type TurnResult struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type TurnTimeoutData struct {
	RoomID string `json:"room_id"`
}

type TurnEndedData struct {
	Word        string         `json:"word"`
	Drawer      string         `json:"drawer"`
	DrawerName  string         `json:"drawer_name"`
	Results     []TurnResult   `json:"results"`
	Scores      map[string]int `json:"scores"`
	Timeout     bool           `json:"timeout"`
	AllGuessed  bool           `json:"all_guessed"`
	NextPhaseIn int            `json:"next_phase_in"`
}

type RoundCompleteData struct {
	NextRound        int `json:"next_round"`
	IntermissionTime int `json:"intermission_time"`
}

type GameEndedData struct {
	Winner       *TurnResult  `json:"winner"`
	FinalResults []TurnResult `json:"final_results"`
	TotalRounds  int          `json:"total_rounds"`
}

// DrawData is the relayed stroke payload. Fields beyond Type/Timestamp are
// present depending on the stroke event that produced it.
type DrawData struct {
	Type      string   `json:"type"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Color     string   `json:"color,omitempty"`
	Size      float64  `json:"size,omitempty"`
	Tool      string   `json:"tool,omitempty"`
	Timestamp float64  `json:"timestamp"`
}

type ToolChangedData struct {
	Tool  string  `json:"tool,omitempty"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
	User  string  `json:"user"`
}

type CanvasClearedData struct {
	Timestamp float64 `json:"timestamp"`
	ClearedBy string  `json:"cleared_by"`
}
