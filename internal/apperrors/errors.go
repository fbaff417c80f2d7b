package apperrors

import (
	"github.com/palemoky/impostor/internal/protocol"
)

// GameError 游戏错误，被拒绝的操作不改变房间状态
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound     = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull         = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom        = newError(protocol.ErrCodeNotInRoom)
	ErrGameInProgress   = newError(protocol.ErrCodeGameInProgress)
	ErrInvalidCharacter = newError(protocol.ErrCodeInvalidCharacter)
	ErrCharacterLocked  = newError(protocol.ErrCodeCharacterLocked)
	ErrCharacterTaken   = newError(protocol.ErrCodeCharacterTaken)
	ErrInvalidName      = newError(protocol.ErrCodeInvalidName)
	ErrNotHost          = newError(protocol.ErrCodeNotHost)
	ErrTooFewPlayers    = newError(protocol.ErrCodeTooFewPlayers)
	ErrNotYourTurn      = newError(protocol.ErrCodeNotYourTurn)
	ErrWrongPhase       = newError(protocol.ErrCodeWrongPhase)
	ErrAlreadyVoted     = newError(protocol.ErrCodeAlreadyVoted)
	ErrMaintenance      = newError(protocol.ErrCodeServerMaintenance)
)
