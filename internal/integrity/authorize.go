package integrity

import (
	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/rule"
)

// Authorize 在进入规则引擎前做身份预校验。
// 只检查成员、房主、回合、队伍和角色，具体规则仍由引擎判断。
func Authorize(s *game.GameState, playerID string, action rule.Action) error {
	if s == nil {
		return apperrors.ErrRoomNotFound
	}

	if action.Type.System() {
		if playerID != "" {
			return apperrors.ErrUnauthorized
		}
		return nil
	}
	if playerID == "" {
		return apperrors.ErrUnauthorized
	}
	if action.Type == rule.ActionAddPlayer {
		return nil
	}

	p, ok := s.Player(playerID)
	if !ok {
		return apperrors.ErrNotInRoom
	}
	if action.Type.OwnerOnly() && !p.IsRoomOwner {
		return apperrors.ErrNotRoomOwner
	}

	var role game.Role
	switch action.Type {
	case rule.ActionGiveClue:
		role = game.RoleSpymaster
	case rule.ActionRevealCard, rule.ActionPassTurn:
		role = game.RoleGuesser
	default:
		return nil
	}
	switch s.Phase {
	case game.PhaseLobby:
		return apperrors.ErrGameNotStarted
	case game.PhaseEnded:
		return apperrors.ErrGameAlreadyEnded
	}
	if p.Team != s.CurrentTeam {
		return apperrors.ErrNotYourTurn
	}
	if p.Role != role {
		return apperrors.ErrWrongRole
	}
	return nil
}
