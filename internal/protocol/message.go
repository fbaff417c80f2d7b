package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	ReqID   string          `json:"req_id,omitempty"` // 请求 ID，响应原样带回
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom      MessageType = "create_room"      // 创建房间
	MsgCheckCharacters MessageType = "check_characters" // 查询可选角色
	MsgJoinRoom        MessageType = "join_room"        // 加入房间

	// 游戏操作
	MsgStartGame  MessageType = "start_game"  // 房主开局
	MsgSubmitClue MessageType = "submit_clue" // 提交线索
	MsgCastVote   MessageType = "cast_vote"   // 投票
	MsgChat       MessageType = "chat"        // 聊天消息（仅投票阶段）

	// 排行榜
	MsgGetStats       MessageType = "get_stats"       // 获取个人统计
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong
	MsgAck       MessageType = "ack"       // 请求已受理

	// 房间相关
	MsgRoomCreated      MessageType = "room_created"      // 房间创建成功
	MsgCharactersResult MessageType = "characters_result" // 可选角色
	MsgRoomJoined       MessageType = "room_joined"       // 加入房间成功
	MsgRosterUpdate     MessageType = "roster_update"     // 玩家列表更新

	// 游戏流程
	MsgGameStarted  MessageType = "game_started"  // 开局（按角色下发）
	MsgTurnUpdate   MessageType = "turn_update"   // 轮到某人
	MsgTimerTick    MessageType = "timer_tick"    // 倒计时
	MsgCluesUpdate  MessageType = "clues_update"  // 线索列表更新
	MsgPhaseChanged MessageType = "phase_changed" // 阶段切换
	MsgVoteProgress MessageType = "vote_progress" // 投票进度
	MsgReveal       MessageType = "reveal"        // 揭晓

	// 排行榜
	MsgStatsResult       MessageType = "stats_result"       // 个人统计结果
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果

	// 系统通知
	MsgMaintenance MessageType = "maintenance" // 维护通知

	// 错误
	MsgError MessageType = "error" // 错误消息
)
