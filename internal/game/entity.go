package game

import (
	"slices"
	"time"
)

// BoardSize 每局卡牌数量（5x5）
const BoardSize = 25

// Player 玩家
type Player struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Team         Team       `json:"team"`
	Role         Role       `json:"role"`
	IsRoomOwner  bool       `json:"isRoomOwner"`
	IsBot        bool       `json:"isBot"`
	SecretRole   SecretRole `json:"secretRole"`
	KnownCardIDs []int      `json:"knownCardIds,omitempty"`
	LastTauntAt  time.Time  `json:"lastTauntAt"`
	JoinedAt     time.Time  `json:"joinedAt"`
}

// Card 卡牌
type Card struct {
	ID       int      `json:"id"`
	Word     string   `json:"word"`
	Type     CardType `json:"type"`
	Revealed bool     `json:"revealed"`
}

// Clue 线索，每个队伍回合至多一条
type Clue struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	Team  Team   `json:"team"`
}

// RevealHistoryEntry 翻牌记录，只追加
type RevealHistoryEntry struct {
	CardID    int       `json:"cardId"`
	Word      string    `json:"word"`
	Type      CardType  `json:"type"`
	Team      Team      `json:"team"`
	PlayerID  string    `json:"playerId"`
	Timestamp time.Time `json:"timestamp"`
}

// Vote 终局投票
type Vote struct {
	VoterID  string    `json:"voterId"`
	TargetID string    `json:"targetId"`
	CastAt   time.Time `json:"castAt"`
}

// GuessResult 终局投票结果
type GuessResult struct {
	TargetID   string         `json:"targetId"`
	Success    bool           `json:"success"`
	Votes      map[string]int `json:"votes"`
	ResolvedAt time.Time      `json:"resolvedAt"`
}

// GameState 房间内全部权威状态。
// 存入房间后不再修改，任何变更都基于 Clone 生成新状态。
type GameState struct {
	RoomCode string   `json:"roomCode"`
	Phase    Phase    `json:"phase"`
	Players  []Player `json:"players"`
	Cards    []Card   `json:"cards"`
	Settings Settings `json:"settings"`

	CurrentTeam     Team      `json:"currentTeam"`
	StartingTeam    Team      `json:"startingTeam"`
	Stage           TurnStage `json:"stage"`
	StageSeq        int       `json:"stageSeq"`
	Clue            *Clue     `json:"clue,omitempty"`
	GuessesThisTurn int       `json:"guessesThisTurn"`

	Winner    Team      `json:"winner"`
	WinReason WinReason `json:"winReason"`

	RevealHistory     []RevealHistoryEntry `json:"revealHistory"`
	ConsecutivePasses map[Team]int         `json:"consecutivePasses"`
	Scores            map[Team]int         `json:"scores"`

	ProphetVotes           []Vote       `json:"prophetVotes,omitempty"`
	DoubleAgentVotes       []Vote       `json:"doubleAgentVotes,omitempty"`
	ProphetGuessResult     *GuessResult `json:"prophetGuessResult,omitempty"`
	DoubleAgentGuessResult *GuessResult `json:"doubleAgentGuessResult,omitempty"`

	CurrentTurnStartTime time.Time `json:"currentTurnStartTime"`
	Version              int64     `json:"version"`
	CreatedAt            time.Time `json:"createdAt"`
	LastActivity         time.Time `json:"lastActivity"`
}

// NewGameState 创建处于大厅阶段的空房间状态
func NewGameState(code string, settings Settings, now time.Time) *GameState {
	return &GameState{
		RoomCode:          code,
		Phase:             PhaseLobby,
		Settings:          settings,
		ConsecutivePasses: map[Team]int{TeamDark: 0, TeamLight: 0},
		Scores:            map[Team]int{TeamDark: 0, TeamLight: 0},
		CreatedAt:         now,
		LastActivity:      now,
	}
}

// Clone 深拷贝
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.KnownCardIDs = slices.Clone(p.KnownCardIDs)
		c.Players[i] = p
	}
	c.Cards = slices.Clone(s.Cards)
	c.RevealHistory = slices.Clone(s.RevealHistory)
	c.ProphetVotes = slices.Clone(s.ProphetVotes)
	c.DoubleAgentVotes = slices.Clone(s.DoubleAgentVotes)
	c.ConsecutivePasses = cloneTeamMap(s.ConsecutivePasses)
	c.Scores = cloneTeamMap(s.Scores)
	if s.Clue != nil {
		clue := *s.Clue
		c.Clue = &clue
	}
	c.ProphetGuessResult = s.ProphetGuessResult.clone()
	c.DoubleAgentGuessResult = s.DoubleAgentGuessResult.clone()
	return &c
}

func (r *GuessResult) clone() *GuessResult {
	if r == nil {
		return nil
	}
	c := *r
	if r.Votes != nil {
		c.Votes = make(map[string]int, len(r.Votes))
		for k, v := range r.Votes {
			c.Votes[k] = v
		}
	}
	return &c
}

func cloneTeamMap(m map[Team]int) map[Team]int {
	out := make(map[Team]int, 2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- 查询 ---

// PlayerIndex 玩家下标，不存在时返回 -1
func (s *GameState) PlayerIndex(id string) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.ID == id })
}

// Player 按 ID 查找玩家
func (s *GameState) Player(id string) (*Player, bool) {
	i := s.PlayerIndex(id)
	if i < 0 {
		return nil, false
	}
	return &s.Players[i], true
}

// Owner 房主，房间为空时返回 nil
func (s *GameState) Owner() *Player {
	for i := range s.Players {
		if s.Players[i].IsRoomOwner {
			return &s.Players[i]
		}
	}
	return nil
}

// TeamMembers 队伍成员 ID，按加入顺序
func (s *GameState) TeamMembers(team Team) []string {
	var ids []string
	for _, p := range s.Players {
		if p.Team == team {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// AssignedPlayers 已选择队伍和角色的玩家数量
func (s *GameState) AssignedPlayers() int {
	n := 0
	for _, p := range s.Players {
		if p.Team.Valid() && p.Role.Valid() {
			n++
		}
	}
	return n
}

// Card 按 ID 查找卡牌
func (s *GameState) Card(id int) (*Card, bool) {
	if id < 0 || id >= len(s.Cards) || s.Cards[id].ID != id {
		for i := range s.Cards {
			if s.Cards[i].ID == id {
				return &s.Cards[i], true
			}
		}
		return nil, false
	}
	return &s.Cards[id], true
}

// Remaining 某种类型中尚未翻开的卡牌数
func (s *GameState) Remaining(t CardType) int {
	n := 0
	for _, c := range s.Cards {
		if c.Type == t && !c.Revealed {
			n++
		}
	}
	return n
}

// Revealed 某种类型中已翻开的卡牌数
func (s *GameState) Revealed(t CardType) int {
	n := 0
	for _, c := range s.Cards {
		if c.Type == t && c.Revealed {
			n++
		}
	}
	return n
}

// DarkRemaining 暗队剩余卡牌
func (s *GameState) DarkRemaining() int { return s.Remaining(CardDark) }

// LightRemaining 亮队剩余卡牌
func (s *GameState) LightRemaining() int { return s.Remaining(CardLight) }

// NeutralRevealed 已翻开的中立卡
func (s *GameState) NeutralRevealed() int { return s.Revealed(CardNeutral) }

// AssassinRevealed 已翻开的刺客卡（0 或 1）
func (s *GameState) AssassinRevealed() int { return s.Revealed(CardAssassin) }

// UnrevealedCount 尚未翻开的卡牌总数
func (s *GameState) UnrevealedCount() int {
	n := 0
	for _, c := range s.Cards {
		if !c.Revealed {
			n++
		}
	}
	return n
}

// Votes 某一类别的投票
func (s *GameState) Votes(c VoteCategory) []Vote {
	if c == VoteProphet {
		return s.ProphetVotes
	}
	return s.DoubleAgentVotes
}

// GuessResult 某一类别的投票结果
func (s *GameState) GuessResult(c VoteCategory) *GuessResult {
	if c == VoteProphet {
		return s.ProphetGuessResult
	}
	return s.DoubleAgentGuessResult
}

// Loser 失败方，未结束时为 TeamNone
func (s *GameState) Loser() Team {
	if s.Phase != PhaseEnded {
		return TeamNone
	}
	return s.Winner.Opponent()
}

// SetVotes 替换某一类别的投票
func (s *GameState) SetVotes(c VoteCategory, votes []Vote) {
	if c == VoteProphet {
		s.ProphetVotes = votes
		return
	}
	s.DoubleAgentVotes = votes
}

// SetGuessResult 设置某一类别的投票结果
func (s *GameState) SetGuessResult(c VoteCategory, r *GuessResult) {
	if c == VoteProphet {
		s.ProphetGuessResult = r
		return
	}
	s.DoubleAgentGuessResult = r
}
