package protocol

// 错误码
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001
	ErrCodeRateLimit  = 1002 // 速率限制

	// 房间 / 加入
	ErrCodeRoomNotFound     = 2001
	ErrCodeRoomFull         = 2002
	ErrCodeNotInRoom        = 2003
	ErrCodeGameInProgress   = 2004 // 对局进行中，不能加入或重新开局
	ErrCodeInvalidCharacter = 2005
	ErrCodeCharacterLocked  = 2006 // 同名重新加入时角色不一致
	ErrCodeCharacterTaken   = 2007
	ErrCodeInvalidName      = 2008

	// 游戏
	ErrCodeNotHost       = 3001
	ErrCodeTooFewPlayers = 3002
	ErrCodeNotYourTurn   = 3003
	ErrCodeWrongPhase    = 3004
	ErrCodeAlreadyVoted  = 3005

	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "unknown error",
	ErrCodeInvalidMsg:        "invalid message format",
	ErrCodeRateLimit:         "too many requests",
	ErrCodeRoomNotFound:      "room not found",
	ErrCodeRoomFull:          "room is full",
	ErrCodeNotInRoom:         "you are not in this room",
	ErrCodeGameInProgress:    "a game is in progress",
	ErrCodeInvalidCharacter:  "invalid character",
	ErrCodeCharacterLocked:   "you must rejoin with the same character",
	ErrCodeCharacterTaken:    "character already taken",
	ErrCodeInvalidName:       "invalid name",
	ErrCodeNotHost:           "only the host can start the game",
	ErrCodeTooFewPlayers:     "not enough players to start",
	ErrCodeNotYourTurn:       "it is not your turn",
	ErrCodeWrongPhase:        "action not allowed in this phase",
	ErrCodeAlreadyVoted:      "you have already voted",
	ErrCodeServerMaintenance: "server under maintenance",
}
