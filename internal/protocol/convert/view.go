package convert

import (
	"slices"
	"time"

	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/protocol"
)

// GameView 生成某个玩家能看到的完整视图。
// 情报官和终局后的所有人能看到全部卡牌类型，先知还能看到自己已知的卡牌，其余人只能看到已翻开的；
// 隐藏身份只对本人可见，终局后全部公开。online 为空时所有玩家视为在线。
func GameView(s *game.GameState, viewerID string, online func(playerID string) bool, now time.Time) *protocol.GameView {
	viewer, _ := s.Player(viewerID)
	ended := s.Phase == game.PhaseEnded
	seeAll := ended || (viewer != nil && viewer.Role == game.RoleSpymaster && viewer.Team.Valid())

	v := &protocol.GameView{
		RoomCode:        s.RoomCode,
		Phase:           string(s.Phase),
		YouID:           viewerID,
		Players:         make([]protocol.PlayerView, len(s.Players)),
		Cards:           make([]protocol.CardView, len(s.Cards)),
		Settings:        SettingsToDTO(s.Settings),
		CurrentTeam:     string(s.CurrentTeam),
		StartingTeam:    string(s.StartingTeam),
		Stage:           string(s.Stage),
		StageSeq:        s.StageSeq,
		GuessesThisTurn: s.GuessesThisTurn,
		Winner:          string(s.Winner),
		WinReason:       string(s.WinReason),

		DarkCardsRemaining:  s.DarkRemaining(),
		LightCardsRemaining: s.LightRemaining(),
		Scores:              teamMap(s.Scores),
		ConsecutivePasses:   teamMap(s.ConsecutivePasses),
		RevealHistory:       make([]protocol.RevealDTO, len(s.RevealHistory)),

		ProphetVotes:           voteMap(s.ProphetVotes),
		DoubleAgentVotes:       voteMap(s.DoubleAgentVotes),
		ProphetVotingOpen:      rule.VotingOpen(s, game.VoteProphet),
		DoubleAgentVotingOpen:  rule.VotingOpen(s, game.VoteDoubleAgent),
		ProphetGuessResult:     GuessResultToDTO(s.ProphetGuessResult),
		DoubleAgentGuessResult: GuessResultToDTO(s.DoubleAgentGuessResult),

		CurrentTurnStartTime: Millis(s.CurrentTurnStartTime),
		ServerTime:           Millis(now),
		Version:              s.Version,
		CreatedAt:            Millis(s.CreatedAt),
	}

	for i, p := range s.Players {
		pv := protocol.PlayerView{
			ID:          p.ID,
			Username:    p.Username,
			Team:        string(p.Team),
			Role:        string(p.Role),
			IsRoomOwner: p.IsRoomOwner,
			IsBot:       p.IsBot,
			Online:      online == nil || online(p.ID),
		}
		if ended || p.ID == viewerID {
			pv.SecretRole = string(p.SecretRole)
			pv.KnownCardIDs = append([]int(nil), p.KnownCardIDs...)
		}
		v.Players[i] = pv
	}

	// 先知提前知道几张卡牌的类型
	var known []int
	if viewer != nil && viewer.SecretRole == game.SecretProphet {
		known = viewer.KnownCardIDs
	}
	for i, c := range s.Cards {
		cv := protocol.CardView{ID: c.ID, Word: c.Word, Revealed: c.Revealed}
		if seeAll || c.Revealed || slices.Contains(known, c.ID) {
			cv.Type = string(c.Type)
		}
		v.Cards[i] = cv
	}

	for i, h := range s.RevealHistory {
		v.RevealHistory[i] = protocol.RevealDTO{
			CardID:    h.CardID,
			Word:      h.Word,
			Type:      string(h.Type),
			Team:      string(h.Team),
			PlayerID:  h.PlayerID,
			Timestamp: Millis(h.Timestamp),
		}
	}

	if s.Clue != nil {
		v.Clue = &protocol.ClueDTO{Word: s.Clue.Word, Count: s.Clue.Count, Team: string(s.Clue.Team)}
	}
	if s.Phase == game.PhasePlaying {
		if secs := s.Settings.TurnSeconds(s.Stage); secs > 0 && !s.CurrentTurnStartTime.IsZero() {
			v.TurnDeadline = Millis(s.CurrentTurnStartTime.Add(time.Duration(secs) * time.Second))
		}
	}
	return v
}
