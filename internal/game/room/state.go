package room

// Phase 房间阶段
type Phase int32

const (
	PhaseLobby  Phase = iota // 等待开局
	PhaseClue                // 轮流给线索
	PhaseVoting              // 投票
	PhaseReveal              // 揭晓，可以再开一局
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseClue:
		return "clue"
	case PhaseVoting:
		return "voting"
	case PhaseReveal:
		return "reveal"
	default:
		return "unknown"
	}
}

// InGame 是否处于一局进行中（不允许加入）
func (p Phase) InGame() bool {
	return p == PhaseClue || p == PhaseVoting
}

// Role 玩家身份，只在对局中有值
type Role int

const (
	RoleUnset Role = iota
	RoleInvestigator
	RoleImpostor
)

func (r Role) String() string {
	switch r {
	case RoleInvestigator:
		return "investigator"
	case RoleImpostor:
		return "impostor"
	default:
		return ""
	}
}

// 客户端可见的线索占位文本
const (
	ClueTimedOut = "(Timed Out)"
	ClueEmpty    = "(empty)"
)

const (
	maxNameLength = 20  // 昵称最大长度（字符）
	maxClueLength = 60  // 线索最大长度（字符）
	maxChatLength = 200 // 聊天最大长度（字符）
)
