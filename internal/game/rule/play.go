package rule

import (
	"strings"
	"time"
	"unicode"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
)

// actor 校验对局阶段、当前队伍和角色
func actor(s *game.GameState, playerID string, role game.Role) (*game.Player, error) {
	if err := requirePlaying(s); err != nil {
		return nil, err
	}
	p, err := member(s, playerID)
	if err != nil {
		return nil, err
	}
	if p.Team != s.CurrentTeam {
		return nil, apperrors.ErrNotYourTurn
	}
	if p.Role != role {
		return nil, apperrors.ErrWrongRole
	}
	return p, nil
}

func (e *Engine) giveClue(s *game.GameState, playerID, word string, count int, now time.Time) ([]Event, error) {
	p, err := actor(s, playerID, game.RoleSpymaster)
	if err != nil {
		return nil, err
	}
	if s.Stage != game.StageAwaitingClue {
		return nil, apperrors.ErrInvalidClue
	}
	word, ok := validClue(s, word, count)
	if !ok {
		return nil, apperrors.ErrInvalidClue
	}

	s.Clue = &game.Clue{Word: word, Count: count, Team: p.Team}
	s.Stage = game.StageAwaitingGuess
	s.StageSeq++
	s.GuessesThisTurn = 0
	s.CurrentTurnStartTime = now

	clue := *s.Clue
	return []Event{{Type: EventClueGiven, PlayerID: playerID, Team: p.Team, Clue: &clue}}, nil
}

// validClue 线索必须是单个词，不能与场上未翻开的词相同
func validClue(s *game.GameState, word string, count int) (string, bool) {
	if count < 0 || count > MaxClueCount {
		return "", false
	}
	word = strings.TrimSpace(word)
	if word == "" || len([]rune(word)) > MaxClueLength || strings.IndexFunc(word, unicode.IsSpace) >= 0 {
		return "", false
	}
	for _, c := range s.Cards {
		if !c.Revealed && strings.EqualFold(c.Word, word) {
			return "", false
		}
	}
	return word, true
}

func (e *Engine) revealCard(s *game.GameState, playerID string, cardID int, now time.Time) ([]Event, error) {
	p, err := actor(s, playerID, game.RoleGuesser)
	if err != nil {
		return nil, err
	}
	if s.Stage != game.StageAwaitingGuess || s.Clue == nil {
		return nil, apperrors.ErrNotYourTurn
	}
	card, ok := s.Card(cardID)
	if !ok {
		return nil, apperrors.ErrInvalidCard
	}
	if card.Revealed {
		return nil, apperrors.ErrCardAlreadyRevealed
	}

	card.Revealed = true
	s.GuessesThisTurn++
	s.RevealHistory = append(s.RevealHistory, game.RevealHistoryEntry{
		CardID:    card.ID,
		Word:      card.Word,
		Type:      card.Type,
		Team:      p.Team,
		PlayerID:  playerID,
		Timestamp: now,
	})

	revealed := *card
	events := []Event{{Type: EventCardRevealed, PlayerID: playerID, Team: p.Team, Card: &revealed}}

	own := game.CardTypeOf(p.Team)
	opp := p.Team.Opponent()
	switch card.Type {
	case own:
		s.Scores[p.Team]++
		s.ConsecutivePasses[p.Team] = 0
		if s.Remaining(own) == 0 {
			events = append(events, endGame(s, p.Team, game.WinCards))
		}
	case game.CardAssassin:
		events = append(events, endGame(s, opp, game.WinAssassin))
	case game.CardTypeOf(opp):
		s.Scores[opp]++
		if s.Remaining(card.Type) == 0 {
			events = append(events, endGame(s, opp, game.WinCards))
		} else {
			events = append(events, switchTurn(s, PassReasonWrongCard, now))
		}
	default:
		events = append(events, switchTurn(s, PassReasonWrongCard, now))
	}
	return events, nil
}

func (e *Engine) passTurn(s *game.GameState, playerID string, now time.Time) ([]Event, error) {
	if _, err := actor(s, playerID, game.RoleGuesser); err != nil {
		return nil, err
	}
	if s.Stage != game.StageAwaitingGuess {
		return nil, apperrors.ErrNotYourTurn
	}
	return []Event{switchTurn(s, PassReasonPass, now)}, nil
}

// timerExpired 计时器到期：无论处于哪个子阶段都视为放弃本回合
func (e *Engine) timerExpired(s *game.GameState, playerID string, stageSeq int, now time.Time) ([]Event, error) {
	if playerID != "" {
		return nil, apperrors.ErrUnauthorized
	}
	if s.Phase != game.PhasePlaying || s.Stage == game.StageNone || stageSeq != s.StageSeq {
		return nil, apperrors.ErrStaleTimer
	}
	return []Event{switchTurn(s, PassReasonTimer, now)}, nil
}

// switchTurn 交换回合，刚结束回合的队伍连续放弃次数加一
func switchTurn(s *game.GameState, reason string, now time.Time) Event {
	s.ConsecutivePasses[s.CurrentTeam]++
	s.CurrentTeam = s.CurrentTeam.Opponent()
	s.Clue = nil
	s.Stage = game.StageAwaitingClue
	s.StageSeq++
	s.GuessesThisTurn = 0
	s.CurrentTurnStartTime = now
	return Event{Type: EventTurnPassed, Team: s.CurrentTeam, Reason: reason}
}

// endGame 设置胜者，winner 只会被设置一次
func endGame(s *game.GameState, winner game.Team, reason game.WinReason) Event {
	s.Phase = game.PhaseEnded
	s.Winner = winner
	s.WinReason = reason
	s.Clue = nil
	s.Stage = game.StageNone
	s.StageSeq++
	return Event{Type: EventGameOver, Winner: winner, WinReason: reason}
}
