package protocol

// GameView 下发给单个玩家的完整游戏视图（game_updated）
type GameView struct {
	RoomCode string       `json:"roomCode"`
	Phase    string       `json:"phase"`
	YouID    string       `json:"youId"`
	Players  []PlayerView `json:"players"`
	Cards    []CardView   `json:"cards"`
	Settings SettingsDTO  `json:"settings"`

	CurrentTeam     string   `json:"currentTeam"`
	StartingTeam    string   `json:"startingTeam"`
	Stage           string   `json:"stage"`
	StageSeq        int      `json:"stageSeq"`
	Clue            *ClueDTO `json:"clue"`
	GuessesThisTurn int      `json:"guessesThisTurn"`

	Winner    string `json:"winner"`
	WinReason string `json:"winReason"`

	DarkCardsRemaining  int            `json:"darkCardsRemaining"`
	LightCardsRemaining int            `json:"lightCardsRemaining"`
	Scores              map[string]int `json:"scores"`
	ConsecutivePasses   map[string]int `json:"consecutivePasses"`
	RevealHistory       []RevealDTO    `json:"revealHistory"`

	ProphetVotes           map[string]string `json:"prophetVotes"`     // voterId -> targetId
	DoubleAgentVotes       map[string]string `json:"doubleAgentVotes"` // voterId -> targetId
	ProphetVotingOpen      bool              `json:"prophetVotingOpen"`
	DoubleAgentVotingOpen  bool              `json:"doubleAgentVotingOpen"`
	ProphetGuessResult     *GuessResultDTO   `json:"prophetGuessResult"`
	DoubleAgentGuessResult *GuessResultDTO   `json:"doubleAgentGuessResult"`

	CurrentTurnStartTime int64 `json:"currentTurnStartTime"` // 毫秒
	TurnDeadline         int64 `json:"turnDeadline"`         // 毫秒，未限时为 0
	ServerTime           int64 `json:"serverTime"`           // 毫秒
	Version              int64 `json:"version"`
	CreatedAt            int64 `json:"createdAt"`
}

// PlayerView 玩家视图，隐藏身份只对本人（或终局后）可见
type PlayerView struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Team         string `json:"team"`
	Role         string `json:"role"`
	IsRoomOwner  bool   `json:"isRoomOwner"`
	IsBot        bool   `json:"isBot"`
	Online       bool   `json:"online"`
	SecretRole   string `json:"secretRole,omitempty"`
	KnownCardIDs []int  `json:"knownCardIds,omitempty"`
}

// CardView 卡牌视图，未翻开的牌只有情报官能看到类型
type CardView struct {
	ID       int    `json:"id"`
	Word     string `json:"word"`
	Type     string `json:"type,omitempty"`
	Revealed bool   `json:"revealed"`
}

// ClueDTO 线索
type ClueDTO struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	Team  string `json:"team"`
}

// RevealDTO 翻牌记录
type RevealDTO struct {
	CardID    int    `json:"cardId"`
	Word      string `json:"word"`
	Type      string `json:"type"`
	Team      string `json:"team"`
	PlayerID  string `json:"playerId"`
	Timestamp int64  `json:"timestamp"`
}

// GuessResultDTO 终局投票结果
type GuessResultDTO struct {
	TargetID string         `json:"targetId"`
	Success  bool           `json:"success"`
	Votes    map[string]int `json:"votes"`
}

// SettingsDTO 房间设置
type SettingsDTO struct {
	TimedMode     bool `json:"timedMode"`
	SpymasterTime int  `json:"spymasterTime"`
	GuesserTime   int  `json:"guesserTime"`
	ChaosMode     bool `json:"chaosMode"`
	MaxPlayers    int  `json:"maxPlayers"`
	StartingCards int  `json:"startingCards"`
	OtherCards    int  `json:"otherCards"`
	NeutralCards  int  `json:"neutralCards"`
	AssassinCards int  `json:"assassinCards"`
}
