package game

// 设置范围
const (
	MinPlayers    = 2
	MaxPlayersCap = 20
	MinTurnTime   = 10  // 秒
	MaxTurnTime   = 600 // 秒
)

// TimedMode 限时模式
type TimedMode struct {
	Enabled       bool `json:"enabled"`
	SpymasterTime int  `json:"spymasterTime"` // 秒
	GuesserTime   int  `json:"guesserTime"`   // 秒
}

// CardSplit 每局卡牌分布，先手队伍多一张
type CardSplit struct {
	Starting int `json:"starting"`
	Other    int `json:"other"`
	Neutral  int `json:"neutral"`
	Assassin int `json:"assassin"`
}

// DefaultCardSplit 默认 9/8/7/1
func DefaultCardSplit() CardSplit {
	return CardSplit{Starting: 9, Other: 8, Neutral: 7, Assassin: 1}
}

// Total 卡牌总数
func (c CardSplit) Total() int {
	return c.Starting + c.Other + c.Neutral + c.Assassin
}

// Valid 每队至少一张，总数必须为 BoardSize
func (c CardSplit) Valid() bool {
	return c.Starting >= 1 && c.Other >= 1 && c.Neutral >= 0 && c.Assassin >= 0 &&
		c.Total() == BoardSize
}

// Settings 房间设置
type Settings struct {
	TimedMode  TimedMode `json:"timedMode"`
	ChaosMode  bool      `json:"chaosMode"`
	CardSplit  CardSplit `json:"cardSplit"`
	MaxPlayers int       `json:"maxPlayers"`
}

// DefaultSettings 默认房间设置
func DefaultSettings() Settings {
	return Settings{
		TimedMode:  TimedMode{SpymasterTime: 90, GuesserTime: 60},
		CardSplit:  DefaultCardSplit(),
		MaxPlayers: 10,
	}
}

// Validate 校验设置，playerCount 为当前房间人数
func (s Settings) Validate(playerCount int) bool {
	if !s.CardSplit.Valid() {
		return false
	}
	if s.MaxPlayers < MinPlayers || s.MaxPlayers > MaxPlayersCap || s.MaxPlayers < playerCount {
		return false
	}
	if s.TimedMode.Enabled {
		for _, v := range []int{s.TimedMode.SpymasterTime, s.TimedMode.GuesserTime} {
			if v < MinTurnTime || v > MaxTurnTime {
				return false
			}
		}
	}
	return true
}

// TurnSeconds 当前阶段的限时秒数，未开启或无阶段时返回 0
func (s Settings) TurnSeconds(stage TurnStage) int {
	if !s.TimedMode.Enabled {
		return 0
	}
	switch stage {
	case StageAwaitingClue:
		return s.TimedMode.SpymasterTime
	case StageAwaitingGuess:
		return s.TimedMode.GuesserTime
	default:
		return 0
	}
}
