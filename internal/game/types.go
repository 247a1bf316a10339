package game

// Team 队伍
type Team string

const (
	TeamNone  Team = ""
	TeamDark  Team = "dark"
	TeamLight Team = "light"
)

// Teams 所有可加入的队伍
var Teams = []Team{TeamDark, TeamLight}

// Valid 是否为可加入的队伍
func (t Team) Valid() bool {
	return t == TeamDark || t == TeamLight
}

// Opponent 对方队伍
func (t Team) Opponent() Team {
	switch t {
	case TeamDark:
		return TeamLight
	case TeamLight:
		return TeamDark
	default:
		return TeamNone
	}
}

// Role 玩家角色
type Role string

const (
	RoleNone      Role = ""
	RoleSpymaster Role = "spymaster" // 情报官
	RoleGuesser   Role = "guesser"   // 特工
)

// Valid 是否为可选择的角色
func (r Role) Valid() bool {
	return r == RoleSpymaster || r == RoleGuesser
}

// CardType 卡牌类型
type CardType string

const (
	CardDark     CardType = "dark"
	CardLight    CardType = "light"
	CardNeutral  CardType = "neutral"
	CardAssassin CardType = "assassin"
)

// CardTypeOf 队伍对应的卡牌颜色
func CardTypeOf(t Team) CardType {
	switch t {
	case TeamDark:
		return CardDark
	case TeamLight:
		return CardLight
	default:
		return CardNeutral
	}
}

// SecretRole 混乱模式下的隐藏身份
type SecretRole string

const (
	SecretNone        SecretRole = "none"
	SecretProphet     SecretRole = "prophet"      // 先知
	SecretDoubleAgent SecretRole = "double_agent" // 双面间谍
)

// Phase 房间阶段
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// TurnStage 回合内的子阶段
type TurnStage string

const (
	StageNone          TurnStage = ""
	StageAwaitingClue  TurnStage = "awaiting_clue"
	StageAwaitingGuess TurnStage = "awaiting_guess"
)

// WinReason 胜利原因
type WinReason string

const (
	WinNone     WinReason = ""
	WinCards    WinReason = "cards"    // 翻完本队所有卡牌
	WinAssassin WinReason = "assassin" // 对方翻到刺客
)

// VoteCategory 终局投票类别
type VoteCategory string

const (
	VoteProphet     VoteCategory = "prophet"
	VoteDoubleAgent VoteCategory = "double_agent"
)

// SecretRole 投票类别对应的隐藏身份
func (c VoteCategory) SecretRole() SecretRole {
	if c == VoteProphet {
		return SecretProphet
	}
	return SecretDoubleAgent
}
