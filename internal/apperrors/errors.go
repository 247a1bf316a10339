package apperrors

import (
	"errors"

	"github.com/palemoky/codenames-arena/internal/protocol"
)

// GameError 游戏错误（规则引擎、房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// New 创建一个错误，消息取错误码的默认文案
func New(code int) *GameError {
	msg, ok := protocol.ErrorMessages[code]
	if !ok {
		msg = protocol.ErrorMessages[protocol.ErrCodeUnknown]
	}
	return &GameError{Code: code, Message: msg}
}

// 预定义错误
var (
	ErrInvalidMessage = New(protocol.ErrCodeInvalidMsg)
	ErrRateLimited    = New(protocol.ErrCodeRateLimit)
	ErrUnauthorized   = New(protocol.ErrCodeUnauthorized)
	ErrConnectionLost = New(protocol.ErrCodeConnectionLost)
	ErrMaintenance    = New(protocol.ErrCodeServerMaintenance)

	ErrRoomNotFound     = New(protocol.ErrCodeRoomNotFound)
	ErrRoomFull         = New(protocol.ErrCodeRoomFull)
	ErrNotInRoom        = New(protocol.ErrCodeNotInRoom)
	ErrGameInProgress   = New(protocol.ErrCodeGameInProgress)
	ErrWrongPassword    = New(protocol.ErrCodeWrongPassword)
	ErrNotRoomOwner     = New(protocol.ErrCodeNotRoomOwner)
	ErrInvalidSettings  = New(protocol.ErrCodeInvalidSettings)
	ErrNotEnoughPlayers = New(protocol.ErrCodeNotEnoughPlayers)
	ErrInvalidTeam      = New(protocol.ErrCodeInvalidTeam)

	ErrGameNotStarted      = New(protocol.ErrCodeGameNotStart)
	ErrNotYourTurn         = New(protocol.ErrCodeNotYourTurn)
	ErrWrongRole           = New(protocol.ErrCodeWrongRole)
	ErrInvalidClue         = New(protocol.ErrCodeInvalidClue)
	ErrCardAlreadyRevealed = New(protocol.ErrCodeCardRevealed)
	ErrInvalidCard         = New(protocol.ErrCodeInvalidCard)
	ErrGameAlreadyEnded    = New(protocol.ErrCodeGameEnded)

	ErrVotingUnavailable = New(protocol.ErrCodeVotingUnavailable)
	ErrInvalidVote       = New(protocol.ErrCodeInvalidVote)
	ErrAlreadyVoted      = New(protocol.ErrCodeAlreadyVoted)
	ErrStaleTimer        = New(protocol.ErrCodeStaleTimer)
)

// Code 提取错误码，非 GameError 时返回 ErrCodeUnknown
func Code(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
