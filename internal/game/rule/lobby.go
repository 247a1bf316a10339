package rule

import (
	"strings"
	"time"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/board"
)

// MaxUsernameLength 用户名长度上限（字符）
const MaxUsernameLength = 24

func (e *Engine) addPlayer(s *game.GameState, p *game.Player, now time.Time) ([]Event, error) {
	if p == nil || p.ID == "" {
		return nil, apperrors.ErrInvalidMessage
	}
	username := strings.TrimSpace(p.Username)
	if username == "" || len([]rune(username)) > MaxUsernameLength {
		return nil, apperrors.ErrInvalidMessage
	}
	if s.PlayerIndex(p.ID) >= 0 {
		return nil, apperrors.ErrInvalidMessage
	}
	if len(s.Players) >= s.Settings.MaxPlayers {
		return nil, apperrors.ErrRoomFull
	}

	np := game.Player{
		ID:          p.ID,
		Username:    username,
		IsBot:       p.IsBot,
		IsRoomOwner: len(s.Players) == 0,
		SecretRole:  game.SecretNone,
		JoinedAt:    now,
	}
	s.Players = append(s.Players, np)

	return []Event{{Type: EventPlayerJoined, PlayerID: np.ID, Username: np.Username}}, nil
}

func (e *Engine) removePlayer(s *game.GameState, playerID string, now time.Time) ([]Event, error) {
	i := s.PlayerIndex(playerID)
	if i < 0 {
		return nil, apperrors.ErrNotInRoom
	}
	left := s.Players[i]
	s.Players = append(s.Players[:i], s.Players[i+1:]...)

	ev := Event{Type: EventPlayerLeft, PlayerID: left.ID, Username: left.Username}
	// 房主离开时顺位移交
	if left.IsRoomOwner && len(s.Players) > 0 {
		s.Players[0].IsRoomOwner = true
		ev.NewOwnerID = s.Players[0].ID
	}
	events := []Event{ev}

	// 终局投票中有人离开，剩余投票可能已满足结算条件
	if s.Phase == game.PhaseEnded && s.Settings.ChaosMode {
		for _, c := range []game.VoteCategory{game.VoteProphet, game.VoteDoubleAgent} {
			s.SetVotes(c, dropVoter(s.Votes(c), playerID))
			if ev, ok := resolveVotes(s, c, now); ok {
				events = append(events, ev)
			}
		}
	}
	return events, nil
}

func (e *Engine) joinTeam(s *game.GameState, playerID string, team game.Team, role game.Role) ([]Event, error) {
	p, err := member(s, playerID)
	if err != nil {
		return nil, err
	}
	if !team.Valid() || !role.Valid() {
		return nil, apperrors.ErrInvalidTeam
	}
	switch s.Phase {
	case game.PhaseEnded:
		return nil, apperrors.ErrGameInProgress
	case game.PhasePlaying:
		// 对局中只有尚未入队的玩家可以加入队伍
		if p.Team != game.TeamNone {
			return nil, apperrors.ErrGameInProgress
		}
	}

	p.Team = team
	p.Role = role
	return []Event{{Type: EventTeamChanged, PlayerID: p.ID, Team: team, Role: role}}, nil
}

func (e *Engine) updateSettings(s *game.GameState, playerID string, settings *game.Settings) ([]Event, error) {
	if _, err := requireOwner(s, playerID); err != nil {
		return nil, err
	}
	if s.Phase != game.PhaseLobby {
		return nil, apperrors.ErrGameInProgress
	}
	if settings == nil || !settings.Validate(len(s.Players)) {
		return nil, apperrors.ErrInvalidSettings
	}

	s.Settings = *settings
	return []Event{{Type: EventSettingsUpdated, PlayerID: playerID}}, nil
}

func (e *Engine) startGame(s *game.GameState, playerID string, now time.Time) ([]Event, error) {
	if _, err := requireOwner(s, playerID); err != nil {
		return nil, err
	}
	if s.Phase != game.PhaseLobby {
		return nil, apperrors.ErrGameInProgress
	}
	if err := e.deal(s, now); err != nil {
		return nil, err
	}
	return []Event{{Type: EventGameStarted, PlayerID: playerID, Team: s.CurrentTeam}}, nil
}

func (e *Engine) restartGame(s *game.GameState, playerID string, now time.Time) ([]Event, error) {
	if _, err := requireOwner(s, playerID); err != nil {
		return nil, err
	}
	if s.Phase == game.PhaseLobby {
		return nil, apperrors.ErrGameNotStarted
	}
	if err := e.deal(s, now); err != nil {
		return nil, err
	}
	return []Event{{Type: EventGameRestarted, PlayerID: playerID, Team: s.CurrentTeam}}, nil
}

func (e *Engine) returnToLobby(s *game.GameState, playerID string) ([]Event, error) {
	if _, err := requireOwner(s, playerID); err != nil {
		return nil, err
	}
	if s.Phase == game.PhaseLobby {
		return nil, apperrors.ErrGameNotStarted
	}

	resetRound(s)
	s.Phase = game.PhaseLobby
	s.Cards = nil
	s.CurrentTeam = game.TeamNone
	s.StartingTeam = game.TeamNone
	s.Stage = game.StageNone
	s.StageSeq++
	s.CurrentTurnStartTime = time.Time{}
	return []Event{{Type: EventReturnedToLobby, PlayerID: playerID}}, nil
}

// deal 发牌并进入对局，队伍和角色保持不变
func (e *Engine) deal(s *game.GameState, now time.Time) error {
	if s.AssignedPlayers() < game.MinPlayers {
		return apperrors.ErrNotEnoughPlayers
	}

	starting := game.Teams[e.IntN(len(game.Teams))]
	cards, err := board.Deal(e, e.Words(), s.Settings.CardSplit, starting)
	if err != nil {
		return apperrors.ErrInvalidSettings
	}

	resetRound(s)
	s.Phase = game.PhasePlaying
	s.Cards = cards
	s.StartingTeam = starting
	s.CurrentTeam = starting
	s.Stage = game.StageAwaitingClue
	s.StageSeq++
	s.CurrentTurnStartTime = now

	if s.Settings.ChaosMode {
		e.assignSecretRoles(s)
	}
	return nil
}

// resetRound 清空一局内的临时数据
func resetRound(s *game.GameState) {
	s.Clue = nil
	s.GuessesThisTurn = 0
	s.Winner = game.TeamNone
	s.WinReason = game.WinNone
	s.RevealHistory = nil
	s.ConsecutivePasses = map[game.Team]int{game.TeamDark: 0, game.TeamLight: 0}
	s.Scores = map[game.Team]int{game.TeamDark: 0, game.TeamLight: 0}
	s.ProphetVotes = nil
	s.DoubleAgentVotes = nil
	s.ProphetGuessResult = nil
	s.DoubleAgentGuessResult = nil
	for i := range s.Players {
		s.Players[i].SecretRole = game.SecretNone
		s.Players[i].KnownCardIDs = nil
	}
}
