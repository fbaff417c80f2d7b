package protocol

// 连接与心跳
type (
	ConnectedPayload struct {
		PlayerID string `json:"player_id"`
	}

	PingPayload struct {
		Timestamp int64 `json:"timestamp"` // ms
	}

	// PongPayload 原样带回 ping 的时间戳，客户端据此算延迟
	PongPayload struct {
		ClientTimestamp int64 `json:"client_timestamp"`
		ServerTimestamp int64 `json:"server_timestamp"`
	}

	MaintenancePayload struct {
		Maintenance bool `json:"maintenance"`
	}

	ErrorPayload struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
)

// 大厅：建房、选角、入座
type (
	// RoomCodePayload check_characters 与 start_game 共用
	RoomCodePayload struct {
		RoomCode string `json:"room_code"`
	}

	JoinRoomPayload struct {
		RoomCode  string `json:"room_code"`
		Name      string `json:"name"`
		Character string `json:"character"`
	}

	RoomCreatedPayload struct {
		RoomCode string `json:"room_code"`
	}

	CharactersResultPayload struct {
		RoomCode   string   `json:"room_code"`
		Characters []string `json:"characters"`
		Taken      []string `json:"taken"`
	}

	RoomJoinedPayload struct {
		RoomCode  string `json:"room_code"`
		PlayerID  string `json:"player_id"`
		Character string `json:"character"`
	}

	RosterPayload struct {
		Players []PlayerInfo `json:"players"`
		HostID  string       `json:"host_id"`
	}

	PlayerInfo struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Character string `json:"character"`
	}
)

// 对局：线索、投票、揭晓
type (
	// GameStartedPayload 发给内鬼时 Secret 为空
	GameStartedPayload struct {
		Role     string `json:"role"`
		Category string `json:"category"`
		Secret   string `json:"secret,omitempty"`
	}

	SubmitCluePayload struct {
		RoomCode string `json:"room_code"`
		Clue     string `json:"clue"`
	}

	TurnUpdatePayload struct {
		CurrentPlayerID   string `json:"current_player_id"`
		CurrentPlayerName string `json:"current_player_name"`
		TimeRemaining     int    `json:"time_remaining"`
		CluesRemaining    int    `json:"clues_remaining"`
	}

	TimerTickPayload struct {
		TimeRemaining int `json:"time_remaining"`
	}

	CluesUpdatePayload struct {
		Clues []ClueInfo `json:"clues"`
	}

	// ClueInfo 还没轮到的玩家 Clue 为 null
	ClueInfo struct {
		Name      string  `json:"name"`
		Clue      *string `json:"clue"`
		Character string  `json:"character"`
	}

	PhaseChangedPayload struct {
		Phase string `json:"phase"`
	}

	CastVotePayload struct {
		RoomCode  string `json:"room_code"`
		VotedName string `json:"voted_name"`
	}

	VoteProgressPayload struct {
		TotalVotes   int `json:"total_votes"`
		TotalPlayers int `json:"total_players"`
	}

	// RevealPayload RanAway 为 true 表示内鬼中途离开
	RevealPayload struct {
		Chosen       string       `json:"chosen"`
		IsImpostor   bool         `json:"is_impostor"`
		ImpostorName string       `json:"impostor_name"`
		Secret       string       `json:"secret"`
		VoteResults  []VoteResult `json:"vote_results"`
		RanAway      bool         `json:"ran_away"`
	}

	VoteResult struct {
		Voter string `json:"voter"`
		Voted string `json:"voted"`
	}

	ChatRequestPayload struct {
		RoomCode string `json:"room_code"`
		Message  string `json:"message"`
	}

	ChatPayload struct {
		Name      string `json:"name"`
		Message   string `json:"message"`
		Character string `json:"character"`
		Time      int64  `json:"time"` // ms
	}
)

// 战绩与排行榜
type (
	GetStatsPayload struct {
		Name string `json:"name"`
	}

	StatsResultPayload struct {
		Name              string  `json:"name"`
		TotalGames        int     `json:"total_games"`
		Wins              int     `json:"wins"`
		Losses            int     `json:"losses"`
		WinRate           float64 `json:"win_rate"`
		ImpostorGames     int     `json:"impostor_games"`
		ImpostorWins      int     `json:"impostor_wins"`
		InvestigatorGames int     `json:"investigator_games"`
		InvestigatorWins  int     `json:"investigator_wins"`
		Score             int     `json:"score"`
		Rank              int     `json:"rank"` // 未上榜为 -1
		CurrentStreak     int     `json:"current_streak"`
		MaxWinStreak      int     `json:"max_win_streak"`
	}

	// GetLeaderboardPayload Type 取 total、daily 或 weekly
	GetLeaderboardPayload struct {
		Type  string `json:"type"`
		Limit int    `json:"limit"`
	}

	LeaderboardResultPayload struct {
		Type    string             `json:"type"`
		Entries []LeaderboardEntry `json:"entries"`
	}

	LeaderboardEntry struct {
		Rank    int     `json:"rank"`
		Name    string  `json:"name"`
		Score   int     `json:"score"`
		Wins    int     `json:"wins"`
		WinRate float64 `json:"win_rate"`
	}
)
