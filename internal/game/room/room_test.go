package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/impostor/internal/apperrors"
	"github.com/palemoky/impostor/internal/game/catalog"
	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/testutil"
)

const longTurn = 1000 // 测试中不会超时的回合长度

func newTestManager(t *testing.T, turnSeconds int) *RoomManager {
	t.Helper()
	rm := NewRoomManager(nil, nil, TestSettings(turnSeconds), 10*time.Minute)
	t.Cleanup(rm.Stop)
	return rm
}

// joinPlayers 依次加入玩家，第 i 个玩家使用第 i 个角色
func joinPlayers(t *testing.T, room *Room, names ...string) map[string]*testutil.SimpleClient {
	t.Helper()
	clients := make(map[string]*testutil.SimpleClient, len(names))
	for i, name := range names {
		c := testutil.NewSimpleClient("conn-" + name)
		_, err := room.Join(c, name, catalog.Characters[i])
		require.NoError(t, err)
		clients[name] = c
	}
	return clients
}

func mustSnapshot(t *testing.T, room *Room) Snapshot {
	t.Helper()
	s, err := room.Snapshot()
	require.NoError(t, err)
	return s
}

// pickByName 让指定玩家成为内鬼
func pickByName(name string) func([]string) string {
	return func([]string) string { return "conn-" + name }
}

// finishClueRound 按当前回合依次提交线索直到进入投票
func finishClueRound(t *testing.T, room *Room) {
	t.Helper()
	for range 10 {
		s := mustSnapshot(t, room)
		if s.Phase != PhaseClue {
			return
		}
		require.NoError(t, room.SubmitClue(s.CurrentPlayerID, "hint"))
	}
}

func TestJoin_BroadcastsRoster(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")

	for _, c := range clients {
		roster, ok := testutil.LastPayload[protocol.RosterPayload](c, protocol.MsgRosterUpdate)
		require.True(t, ok)
		require.Len(t, roster.Players, 3)
		assert.Equal(t, "conn-a", roster.HostID)
		assert.Equal(t, "a", roster.Players[0].Name)
		assert.Equal(t, catalog.Characters[0], roster.Players[0].Character)
		assert.Equal(t, "conn-c", roster.Players[2].ID)
	}

	assert.Equal(t, room.Code, clients["b"].GetRoom())
	assert.Equal(t, 3, room.PlayerCount())
}

func TestJoin_ReturnsAssignedCharacter(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))

	character, err := rm.JoinRoom(testutil.NewSimpleClient("x"), room.Code, "  alice  ", "Owl")
	require.NoError(t, err)
	assert.Equal(t, "Owl", character)

	s := mustSnapshot(t, room)
	require.Len(t, s.Players, 1)
	assert.Equal(t, "alice", s.Players[0].Name, "name is trimmed")
}

func TestJoin_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, room *Room)
		join    func(room *Room) error
		wantErr error
	}{
		{
			name:  "room full",
			setup: func(t *testing.T, room *Room) { joinPlayers(t, room, "p1", "p2", "p3", "p4", "p5", "p6", "p7") },
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("late"), "late", "Goat")
				return err
			},
			wantErr: apperrors.ErrRoomFull,
		},
		{
			name: "invalid character",
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("x"), "x", "Dragon")
				return err
			},
			wantErr: apperrors.ErrInvalidCharacter,
		},
		{
			name:  "character taken",
			setup: func(t *testing.T, room *Room) { joinPlayers(t, room, "a") },
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("x"), "x", catalog.Characters[0])
				return err
			},
			wantErr: apperrors.ErrCharacterTaken,
		},
		{
			name:  "same name different character",
			setup: func(t *testing.T, room *Room) { joinPlayers(t, room, "a") },
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("x"), "a", catalog.Characters[5])
				return err
			},
			wantErr: apperrors.ErrCharacterLocked,
		},
		{
			name: "empty name",
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("x"), "   ", "Owl")
				return err
			},
			wantErr: apperrors.ErrInvalidName,
		},
		{
			name: "name too long",
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("x"), "abcdefghijklmnopqrstuvwxyz", "Owl")
				return err
			},
			wantErr: apperrors.ErrInvalidName,
		},
		{
			name: "game in progress",
			setup: func(t *testing.T, room *Room) {
				joinPlayers(t, room, "a", "b", "c")
				require.NoError(t, room.StartGame("conn-a"))
			},
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("x"), "x", "Goat")
				return err
			},
			wantErr: apperrors.ErrGameInProgress,
		},
		{
			name: "rejoin in progress",
			setup: func(t *testing.T, room *Room) {
				joinPlayers(t, room, "a", "b", "c")
				require.NoError(t, room.StartGame("conn-a"))
			},
			join: func(room *Room) error {
				_, err := room.Join(testutil.NewSimpleClient("x"), "b", catalog.Characters[1])
				return err
			},
			wantErr: apperrors.ErrGameInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rm := newTestManager(t, longTurn)
			room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
			if tt.setup != nil {
				tt.setup(t, room)
			}
			before := mustSnapshot(t, room)

			err := tt.join(room)
			assert.ErrorIs(t, err, tt.wantErr)

			after := mustSnapshot(t, room)
			assert.Equal(t, len(before.Players), len(after.Players), "rejected join must not change the room")
			assert.Equal(t, before.HostID, after.HostID)
		})
	}
}

func TestJoinRoom_NotFound(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	_, err := rm.JoinRoom(testutil.NewSimpleClient("x"), "NOPE1", "x", "Owl")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestJoin_RejoinSameNameKeepsHost(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	joinPlayers(t, room, "a", "b", "c")

	fresh := testutil.NewSimpleClient("conn-a2")
	character, err := room.Join(fresh, "a", catalog.Characters[0])
	require.NoError(t, err)
	assert.Equal(t, catalog.Characters[0], character)

	s := mustSnapshot(t, room)
	require.Len(t, s.Players, 3)
	assert.Equal(t, "conn-a2", s.HostID)
	assert.Equal(t, "conn-a2", s.Players[0].ID, "slot keeps its position")
	assert.Equal(t, "a", s.Players[0].Name)

	roster, ok := testutil.LastPayload[protocol.RosterPayload](fresh, protocol.MsgRosterUpdate)
	require.True(t, ok)
	assert.Equal(t, "conn-a2", roster.HostID)
}

func TestJoin_FirstJoinerBecomesHost(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	creator := testutil.NewSimpleClient("creator")
	room := rm.CreateRoom(creator)

	other := testutil.NewSimpleClient("other")
	_, err := room.Join(other, "other", "Owl")
	require.NoError(t, err)
	_, err = room.Join(creator, "creator", "Fox")
	require.NoError(t, err)

	assert.Equal(t, "other", mustSnapshot(t, room).HostID)
}

func TestJoin_SameConnectionNewName(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	c := testutil.NewSimpleClient("c1")

	_, err := room.Join(c, "first", "Owl")
	require.NoError(t, err)
	_, err = room.Join(c, "second", "Owl")
	require.NoError(t, err)

	s := mustSnapshot(t, room)
	require.Len(t, s.Players, 1)
	assert.Equal(t, "second", s.Players[0].Name)
	assert.Equal(t, "c1", s.HostID)
}

func TestCheckCharacters(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	joinPlayers(t, room, "a", "b")

	assert.Equal(t, []string{catalog.Characters[0], catalog.Characters[1]}, rm.CheckCharacters(room.Code))
	assert.Empty(t, rm.CheckCharacters("MISSING"))
}

func TestStartGame_Errors(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	joinPlayers(t, room, "a", "b")

	assert.ErrorIs(t, room.StartGame("stranger"), apperrors.ErrNotInRoom)
	assert.ErrorIs(t, room.StartGame("conn-b"), apperrors.ErrNotHost)
	assert.ErrorIs(t, room.StartGame("conn-a"), apperrors.ErrTooFewPlayers)
	assert.Equal(t, PhaseLobby, mustSnapshot(t, room).Phase)

	joinPlayers(t, room, "c")
	require.NoError(t, room.StartGame("conn-a"))
	assert.ErrorIs(t, room.StartGame("conn-a"), apperrors.ErrGameInProgress)
	assert.ErrorIs(t, rm.StartGame("MISSING", "conn-a"), apperrors.ErrRoomNotFound)
}

func TestStartGame_ExactlyOneImpostor(t *testing.T) {
	t.Parallel()

	for n := 3; n <= 7; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			t.Parallel()

			rm := newTestManager(t, longTurn)
			room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
			names := make([]string, n)
			for i := range names {
				names[i] = fmt.Sprintf("p%d", i)
			}
			clients := joinPlayers(t, room, names...)

			require.NoError(t, room.StartGame("conn-p0"))

			s := mustSnapshot(t, room)
			assert.Equal(t, PhaseClue, s.Phase)
			assert.Contains(t, catalog.Categories[s.Category], s.Secret)

			impostors := 0
			for _, p := range s.Players {
				assert.Nil(t, p.Clue)
				switch p.Role {
				case RoleImpostor:
					impostors++
				case RoleInvestigator:
				default:
					t.Errorf("player %s has no role", p.Name)
				}

				started, ok := testutil.LastPayload[protocol.GameStartedPayload](clients[p.Name], protocol.MsgGameStarted)
				require.True(t, ok)
				assert.Equal(t, p.Role.String(), started.Role)
				assert.Equal(t, s.Category, started.Category)
				if p.Role == RoleImpostor {
					assert.Empty(t, started.Secret)
				} else {
					assert.Equal(t, s.Secret, started.Secret)
				}
			}
			assert.Equal(t, 1, impostors)
		})
	}
}

func TestClueRound_AdvancesToVoting(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")
	require.NoError(t, room.StartGame("conn-a"))

	s := mustSnapshot(t, room)
	require.NotEmpty(t, s.CurrentPlayerID)
	assert.Equal(t, longTurn, s.TimeRemaining)

	turnUpdate, ok := testutil.LastPayload[protocol.TurnUpdatePayload](clients["a"], protocol.MsgTurnUpdate)
	require.True(t, ok)
	assert.Equal(t, s.CurrentPlayerID, turnUpdate.CurrentPlayerID)
	assert.Equal(t, 3, turnUpdate.CluesRemaining)

	// 不是自己的回合
	for _, p := range s.Players {
		if p.ID != s.CurrentPlayerID {
			assert.ErrorIs(t, room.SubmitClue(p.ID, "nope"), apperrors.ErrNotYourTurn)
			break
		}
	}

	first := s.CurrentPlayerID
	require.NoError(t, room.SubmitClue(first, "bark"))
	assert.ErrorIs(t, room.SubmitClue(first, "again"), apperrors.ErrNotYourTurn)

	s = mustSnapshot(t, room)
	assert.NotEqual(t, first, s.CurrentPlayerID, "a player is never picked twice")

	finishClueRound(t, room)

	s = mustSnapshot(t, room)
	assert.Equal(t, PhaseVoting, s.Phase)
	assert.Empty(t, s.CurrentPlayerID)
	for _, p := range s.Players {
		require.NotNil(t, p.Clue)
	}

	phase, ok := testutil.LastPayload[protocol.PhaseChangedPayload](clients["b"], protocol.MsgPhaseChanged)
	require.True(t, ok)
	assert.Equal(t, "voting", phase.Phase)
	assert.Equal(t, 3, clients["c"].CountOfType(protocol.MsgCluesUpdate))
	assert.ErrorIs(t, room.SubmitClue(first, "late"), apperrors.ErrWrongPhase)
}

func TestSubmitClue_EmptyAndLong(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	joinPlayers(t, room, "a", "b", "c")
	require.NoError(t, room.StartGame("conn-a"))

	first := mustSnapshot(t, room).CurrentPlayerID
	require.NoError(t, room.SubmitClue(first, "   "))
	second := mustSnapshot(t, room).CurrentPlayerID
	long := ""
	for range 100 {
		long += "x"
	}
	require.NoError(t, room.SubmitClue(second, long))

	for _, p := range mustSnapshot(t, room).Players {
		switch p.ID {
		case first:
			require.NotNil(t, p.Clue)
			assert.Equal(t, ClueEmpty, *p.Clue)
		case second:
			require.NotNil(t, p.Clue)
			assert.Len(t, *p.Clue, maxClueLength)
		}
	}
}

func TestCluesUpdate_UnsubmittedIsNull(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")
	require.NoError(t, room.StartGame("conn-a"))
	require.NoError(t, room.SubmitClue(mustSnapshot(t, room).CurrentPlayerID, "moon"))

	msg := clients["a"].LastOfType(protocol.MsgCluesUpdate)
	require.NotNil(t, msg)
	assert.Contains(t, string(msg.Payload), `"clue":null`)
	assert.Contains(t, string(msg.Payload), `"clue":"moon"`)
}

func TestTurnTimeout_AdvancesWithSentinel(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, 2)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")
	require.NoError(t, room.StartGame("conn-a"))

	assert.Eventually(t, func() bool {
		return room.Phase() == PhaseVoting
	}, 2*time.Second, 5*time.Millisecond)

	for _, p := range mustSnapshot(t, room).Players {
		require.NotNil(t, p.Clue)
		assert.Equal(t, ClueTimedOut, *p.Clue)
	}

	ticks := clients["a"].MessagesOfType(protocol.MsgTimerTick)
	assert.Len(t, ticks, 6, "two ticks per turn")
	last, ok := testutil.LastPayload[protocol.TimerTickPayload](clients["a"], protocol.MsgTimerTick)
	require.True(t, ok)
	assert.Equal(t, 0, last.TimeRemaining)
}

// 每个回合的 tick 必须从预算开始连续递减，出现重复说明有两个计时器同时存活
func TestTimer_OneLiveTimerPerRoom(t *testing.T) {
	t.Parallel()

	const turnSeconds = 400
	rm := newTestManager(t, turnSeconds)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c", "d")
	require.NoError(t, room.StartGame("conn-a"))

	for range 3 {
		time.Sleep(30 * time.Millisecond)
		require.NoError(t, room.SubmitClue(mustSnapshot(t, room).CurrentPlayerID, "w"))
	}
	time.Sleep(30 * time.Millisecond)

	expected := -1
	for _, msg := range clients["a"].SentMessages() {
		switch msg.Type {
		case protocol.MsgTurnUpdate:
			expected = turnSeconds - 1
		case protocol.MsgTimerTick:
			tick, err := codec.ParsePayload[protocol.TimerTickPayload](msg)
			require.NoError(t, err)
			require.Equal(t, expected, tick.TimeRemaining, "tick out of sequence")
			expected--
		}
	}
	assert.Less(t, expected, turnSeconds-1, "timer never ticked")
}

func TestVoting_ExampleScenario(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoomWithCode("ABC1")
	room.pickImpostor = pickByName("B")
	clients := joinPlayers(t, room, "A", "B", "C")

	require.NoError(t, rm.StartGame("ABC1", "conn-A"))
	s := mustSnapshot(t, room)
	b, ok := s.Player("B")
	require.True(t, ok)
	assert.Equal(t, RoleImpostor, b.Role)

	for name, c := range clients {
		started, ok := testutil.LastPayload[protocol.GameStartedPayload](c, protocol.MsgGameStarted)
		require.True(t, ok)
		if name == "B" {
			assert.Equal(t, "impostor", started.Role)
			assert.Empty(t, started.Secret)
		} else {
			assert.Equal(t, "investigator", started.Role)
			assert.Equal(t, s.Secret, started.Secret)
		}
	}

	finishClueRound(t, room)
	require.Equal(t, PhaseVoting, mustSnapshot(t, room).Phase)

	require.NoError(t, rm.CastVote("ABC1", "conn-A", "B"))
	assert.ErrorIs(t, rm.CastVote("ABC1", "conn-A", "C"), apperrors.ErrAlreadyVoted)
	require.NoError(t, rm.CastVote("ABC1", "conn-B", "C"))

	progress, ok := testutil.LastPayload[protocol.VoteProgressPayload](clients["C"], protocol.MsgVoteProgress)
	require.True(t, ok)
	assert.Equal(t, 2, progress.TotalVotes)
	assert.Equal(t, 3, progress.TotalPlayers)

	require.NoError(t, rm.CastVote("ABC1", "conn-C", "B"))

	reveal, ok := testutil.LastPayload[protocol.RevealPayload](clients["A"], protocol.MsgReveal)
	require.True(t, ok)
	assert.Equal(t, "B", reveal.Chosen)
	assert.True(t, reveal.IsImpostor)
	assert.Equal(t, "B", reveal.ImpostorName)
	assert.Equal(t, s.Secret, reveal.Secret)
	assert.False(t, reveal.RanAway)
	assert.Equal(t, []protocol.VoteResult{
		{Voter: "A", Voted: "B"},
		{Voter: "B", Voted: "C"},
		{Voter: "C", Voted: "B"},
	}, reveal.VoteResults)

	after := mustSnapshot(t, room)
	assert.Equal(t, PhaseReveal, after.Phase)
	assert.Zero(t, after.Votes, "votes are cleared after reveal")
}

func TestTally(t *testing.T) {
	t.Parallel()

	votes := func(names ...string) []vote {
		out := make([]vote, len(names))
		for i, n := range names {
			out[i] = vote{voterID: fmt.Sprint(i), votedName: n}
		}
		return out
	}

	tests := []struct {
		name   string
		votes  []vote
		chosen string
	}{
		{"strict max", votes("B", "C", "B"), "B"},
		{"tie goes to earliest first vote", votes("C", "B", "B", "C"), "C"},
		{"three way tie", votes("X", "Y", "Z"), "X"},
		{"later majority wins", votes("A", "B", "B"), "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chosen, counts := tally(tt.votes)
			assert.Equal(t, tt.chosen, chosen)

			sum := 0
			for _, n := range counts {
				sum += n
			}
			assert.Equal(t, len(tt.votes), sum)
		})
	}
}

func TestVoting_WrongImpostorChosen(t *testing.T) {
	t.Parallel()

	rec := &testutil.RecordingLeaderboard{}
	rm := NewRoomManager(nil, rec, TestSettings(longTurn), time.Minute)
	t.Cleanup(rm.Stop)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	room.pickImpostor = pickByName("a")
	clients := joinPlayers(t, room, "a", "b", "c")

	require.NoError(t, room.StartGame("conn-a"))
	finishClueRound(t, room)

	require.NoError(t, room.CastVote("conn-a", "b"))
	require.NoError(t, room.CastVote("conn-b", "c"))
	require.NoError(t, room.CastVote("conn-c", "b"))

	reveal, ok := testutil.LastPayload[protocol.RevealPayload](clients["c"], protocol.MsgReveal)
	require.True(t, ok)
	assert.Equal(t, "b", reveal.Chosen)
	assert.False(t, reveal.IsImpostor)
	assert.Equal(t, "a", reveal.ImpostorName)

	assert.Eventually(t, func() bool { return len(rec.Results()) == 3 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []testutil.GameResult{
		{Name: "a", WasImpostor: true, Won: true},
		{Name: "b", WasImpostor: false, Won: false},
		{Name: "c", WasImpostor: false, Won: false},
	}, rec.Results())
}

func TestCastVote_OutsideVotingIsIgnored(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")

	assert.NoError(t, room.CastVote("conn-a", "b"))
	assert.NoError(t, room.CastVote("stranger", "b"))
	require.NoError(t, room.StartGame("conn-a"))
	assert.NoError(t, room.CastVote("conn-a", "b"))
	assert.NoError(t, room.CastVote("stranger", "b"))

	assert.Zero(t, mustSnapshot(t, room).Votes)
	assert.Zero(t, clients["a"].CountOfType(protocol.MsgVoteProgress))

	finishClueRound(t, room)
	require.Equal(t, PhaseVoting, mustSnapshot(t, room).Phase)
	assert.ErrorIs(t, room.CastVote("stranger", "b"), apperrors.ErrNotInRoom)
}

func TestManagerJoin_SwitchesOnlyAfterSuccess(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	home := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, home, "a", "b", "c")
	away := rm.CreateRoom(testutil.NewSimpleClient("other"))
	joinPlayers(t, away, "x")

	mover := clients["b"]
	_, err := rm.JoinRoom(mover, away.Code, "mover", catalog.Characters[0])
	assert.ErrorIs(t, err, apperrors.ErrCharacterTaken)
	assert.Equal(t, home.Code, mover.GetRoom())
	assert.Len(t, mustSnapshot(t, home).Players, 3)

	require.NoError(t, home.StartGame("conn-a"))
	_, err = rm.JoinRoom(mover, away.Code, "mover", catalog.Characters[5])
	assert.ErrorIs(t, err, apperrors.ErrGameInProgress)
	assert.Equal(t, PhaseClue, mustSnapshot(t, home).Phase)
	assert.Len(t, mustSnapshot(t, away).Players, 1)
}

func TestChat_OnlyDuringVoting(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")

	rm.Chat(room.Code, "conn-a", "hello lobby")
	require.NoError(t, room.StartGame("conn-a"))
	rm.Chat(room.Code, "conn-a", "hello clue")
	finishClueRound(t, room)

	rm.Chat(room.Code, "stranger", "intruder")
	rm.Chat(room.Code, "conn-b", "   ")
	rm.Chat(room.Code, "conn-b", "it was a")

	msgs := clients["c"].MessagesOfType(protocol.MsgChat)
	require.Len(t, msgs, 1)
	chat, ok := testutil.LastPayload[protocol.ChatPayload](clients["c"], protocol.MsgChat)
	require.True(t, ok)
	assert.Equal(t, "b", chat.Name)
	assert.Equal(t, "it was a", chat.Message)
	assert.Equal(t, catalog.Characters[1], chat.Character)
	assert.NotZero(t, chat.Time)
}

func TestRevealRoom_AcceptsJoinsAndRestarts(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	room.pickImpostor = pickByName("a")
	joinPlayers(t, room, "a", "b", "c")

	require.NoError(t, room.StartGame("conn-a"))
	finishClueRound(t, room)
	for _, id := range []string{"conn-a", "conn-b", "conn-c"} {
		require.NoError(t, room.CastVote(id, "a"))
	}
	require.Equal(t, PhaseReveal, mustSnapshot(t, room).Phase)

	// 同名重新加入必须保持原角色
	_, err := room.Join(testutil.NewSimpleClient("conn-b2"), "b", catalog.Characters[7])
	assert.ErrorIs(t, err, apperrors.ErrCharacterLocked)
	_, err = room.Join(testutil.NewSimpleClient("conn-b2"), "b", catalog.Characters[1])
	require.NoError(t, err)

	_, err = room.Join(testutil.NewSimpleClient("conn-d"), "d", catalog.Characters[3])
	require.NoError(t, err)

	require.NoError(t, room.StartGame("conn-a"))
	s := mustSnapshot(t, room)
	assert.Equal(t, PhaseClue, s.Phase)
	assert.Len(t, s.Players, 4)
	for _, p := range s.Players {
		assert.Nil(t, p.Clue, "clues reset for the new game")
	}
}

func TestImpostorFlees_DuringClue(t *testing.T) {
	t.Parallel()

	rec := &testutil.RecordingLeaderboard{}
	rm := NewRoomManager(nil, rec, TestSettings(longTurn), time.Minute)
	t.Cleanup(rm.Stop)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	room.pickImpostor = pickByName("b")
	clients := joinPlayers(t, room, "a", "b", "c")

	require.NoError(t, room.StartGame("conn-a"))
	secret := mustSnapshot(t, room).Secret

	rm.HandleDisconnect(clients["b"])

	reveal, ok := testutil.LastPayload[protocol.RevealPayload](clients["a"], protocol.MsgReveal)
	require.True(t, ok)
	assert.True(t, reveal.RanAway)
	assert.False(t, reveal.IsImpostor)
	assert.Equal(t, "b", reveal.Chosen)
	assert.Equal(t, "b", reveal.ImpostorName)
	assert.Equal(t, secret, reveal.Secret)
	assert.Empty(t, reveal.VoteResults)

	s := mustSnapshot(t, room)
	assert.Equal(t, PhaseReveal, s.Phase)
	assert.Empty(t, s.CurrentPlayerID)
	require.Len(t, s.Players, 2)
	for _, p := range s.Players {
		assert.Equal(t, RoleUnset, p.Role)
		assert.Nil(t, p.Clue)
	}

	// 计时器已停
	ticks := clients["c"].CountOfType(protocol.MsgTimerTick)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticks, clients["c"].CountOfType(protocol.MsgTimerTick))

	// 名单在揭晓之后广播
	roster, ok := testutil.LastPayload[protocol.RosterPayload](clients["c"], protocol.MsgRosterUpdate)
	require.True(t, ok)
	assert.Len(t, roster.Players, 2)

	assert.Eventually(t, func() bool { return len(rec.Results()) == 3 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []testutil.GameResult{
		{Name: "b", WasImpostor: true, Won: true},
		{Name: "a", WasImpostor: false, Won: false},
		{Name: "c", WasImpostor: false, Won: false},
	}, rec.Results())
}

func TestImpostorFlees_DuringVotingBypassesVotes(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	room.pickImpostor = pickByName("c")
	clients := joinPlayers(t, room, "a", "b", "c", "d")

	require.NoError(t, room.StartGame("conn-a"))
	finishClueRound(t, room)
	require.NoError(t, room.CastVote("conn-a", "c"))
	require.NoError(t, room.CastVote("conn-b", "c"))

	require.NoError(t, room.Leave("conn-c"))

	reveal, ok := testutil.LastPayload[protocol.RevealPayload](clients["d"], protocol.MsgReveal)
	require.True(t, ok)
	assert.True(t, reveal.RanAway)
	assert.False(t, reveal.IsImpostor)
	assert.Equal(t, "c", reveal.ImpostorName)
	assert.Equal(t, 1, clients["d"].CountOfType(protocol.MsgReveal))

	s := mustSnapshot(t, room)
	assert.Equal(t, PhaseReveal, s.Phase)
	assert.Zero(t, s.Votes)
}

func TestLeave_InvestigatorDuringVotingResolves(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	room.pickImpostor = pickByName("a")
	clients := joinPlayers(t, room, "a", "b", "c", "d")

	require.NoError(t, room.StartGame("conn-a"))
	finishClueRound(t, room)
	require.NoError(t, room.CastVote("conn-a", "b"))
	require.NoError(t, room.CastVote("conn-b", "a"))
	require.NoError(t, room.CastVote("conn-c", "a"))

	// d 没投票就走了，剩下三票三人，立即揭晓
	require.NoError(t, room.Leave("conn-d"))

	reveal, ok := testutil.LastPayload[protocol.RevealPayload](clients["b"], protocol.MsgReveal)
	require.True(t, ok)
	assert.False(t, reveal.RanAway)
	assert.Equal(t, "a", reveal.Chosen)
	assert.True(t, reveal.IsImpostor)
	assert.Equal(t, PhaseReveal, mustSnapshot(t, room).Phase)
}

func TestLeave_VoterBallotRemoved(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	room.pickImpostor = pickByName("a")
	joinPlayers(t, room, "a", "b", "c", "d")

	require.NoError(t, room.StartGame("conn-a"))
	finishClueRound(t, room)
	require.NoError(t, room.CastVote("conn-b", "a"))
	require.NoError(t, room.Leave("conn-b"))

	s := mustSnapshot(t, room)
	assert.Equal(t, PhaseVoting, s.Phase)
	assert.Zero(t, s.Votes)
	assert.Len(t, s.Players, 3)
}

func TestLeave_HostFailover(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")

	rm.HandleDisconnect(clients["a"])

	s := mustSnapshot(t, room)
	assert.Equal(t, "conn-b", s.HostID)
	roster, ok := testutil.LastPayload[protocol.RosterPayload](clients["c"], protocol.MsgRosterUpdate)
	require.True(t, ok)
	assert.Equal(t, "conn-b", roster.HostID)
	assert.Len(t, roster.Players, 2)
	assert.Empty(t, clients["a"].GetRoom())

	// 非房主离开，房主不变
	require.NoError(t, room.Leave("conn-c"))
	assert.Equal(t, "conn-b", mustSnapshot(t, room).HostID)
}

func TestLeave_CurrentTurnHolderAdvances(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	room.pickImpostor = pickByName("a")
	clients := joinPlayers(t, room, "a", "b", "c", "d")
	require.NoError(t, room.StartGame("conn-a"))

	// 轮到内鬼以外的人时让他离开
	var leaver string
	for range 4 {
		s := mustSnapshot(t, room)
		if s.CurrentPlayerID != "conn-a" {
			leaver = s.CurrentPlayerID
			break
		}
		require.NoError(t, room.SubmitClue(s.CurrentPlayerID, "x"))
	}
	require.NotEmpty(t, leaver)

	turns := clients["a"].CountOfType(protocol.MsgTurnUpdate)
	require.NoError(t, room.Leave(leaver))

	s := mustSnapshot(t, room)
	assert.NotEqual(t, leaver, s.CurrentPlayerID)
	if s.Phase == PhaseClue {
		assert.Equal(t, turns+1, clients["a"].CountOfType(protocol.MsgTurnUpdate))
	}
	for _, p := range s.Players {
		assert.NotEqual(t, leaver, p.ID)
	}
}

func TestLeave_UnknownConnectionIsNoop(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a")

	before := clients["a"].CountOfType(protocol.MsgRosterUpdate)
	require.NoError(t, room.Leave("ghost"))
	assert.Equal(t, before, clients["a"].CountOfType(protocol.MsgRosterUpdate))
}

func TestRoomDestroyedWhenEmpty(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryRoomStore()
	rm := NewRoomManager(store, nil, TestSettings(longTurn), time.Minute)
	t.Cleanup(rm.Stop)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	clients := joinPlayers(t, room, "a", "b", "c")
	require.NoError(t, room.StartGame("conn-a"))

	assert.Eventually(t, func() bool {
		data, ok := store.Get(room.Code)
		return ok && data.Phase == "clue"
	}, time.Second, 5*time.Millisecond)
	data, _ := store.Get(room.Code)
	assert.Len(t, data.Players, 3)
	assert.Equal(t, []string{"conn-a", "conn-b", "conn-c"}, data.Order)

	for _, name := range []string{"a", "b", "c"} {
		rm.HandleDisconnect(clients[name])
	}

	// 最后一个离开的操作返回时房间已被移除
	assert.Nil(t, rm.GetRoom(room.Code))
	assert.Zero(t, rm.GetRoomCount())
	select {
	case <-room.Done():
	default:
		t.Fatal("room actor still running")
	}

	assert.ErrorIs(t, room.StartGame("conn-a"), apperrors.ErrRoomNotFound)
	_, err := room.Join(testutil.NewSimpleClient("x"), "x", "Owl")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	assert.Eventually(t, func() bool {
		_, ok := store.Get(room.Code)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestDestroyIfEmpty(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	empty := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	busy := rm.CreateRoom(testutil.NewSimpleClient("creator2"))
	joinPlayers(t, busy, "a")

	assert.True(t, rm.DestroyIfEmpty(empty.Code))
	assert.Nil(t, rm.GetRoom(empty.Code))

	assert.False(t, rm.DestroyIfEmpty(busy.Code))
	assert.NotNil(t, rm.GetRoom(busy.Code))

	assert.False(t, rm.DestroyIfEmpty("MISSING"))
}

func TestCleanup_RemovesStaleEmptyRooms(t *testing.T) {
	t.Parallel()

	rm := NewRoomManager(nil, nil, TestSettings(longTurn), 0)
	t.Cleanup(rm.Stop)
	stale := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	busy := rm.CreateRoom(testutil.NewSimpleClient("creator2"))
	joinPlayers(t, busy, "a")

	time.Sleep(2 * time.Millisecond)
	rm.cleanup()

	assert.Nil(t, rm.GetRoom(stale.Code))
	assert.NotNil(t, rm.GetRoom(busy.Code))
}

func TestGenerateRoomCode(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	seen := make(map[string]bool)
	for range 200 {
		room := rm.CreateRoom(testutil.NewSimpleClient("c"))
		assert.Len(t, room.Code, roomCodeLength)
		for _, ch := range room.Code {
			assert.Contains(t, roomCodeChars, string(ch))
		}
		assert.False(t, seen[room.Code], "duplicate code %s", room.Code)
		seen[room.Code] = true
	}
	assert.Equal(t, 200, rm.GetRoomCount())
}

func TestGetActiveGamesCount(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, longTurn)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	joinPlayers(t, room, "a", "b", "c")
	rm.CreateRoom(testutil.NewSimpleClient("idle"))

	assert.Zero(t, rm.GetActiveGamesCount())
	require.NoError(t, room.StartGame("conn-a"))
	assert.Equal(t, 1, rm.GetActiveGamesCount())
}

func TestRoom_ConcurrentActions(t *testing.T) {
	t.Parallel()

	rm := newTestManager(t, 3)
	room := rm.CreateRoom(testutil.NewSimpleClient("creator"))
	joinPlayers(t, room, "a", "b", "c", "d", "e")
	require.NoError(t, room.StartGame("conn-a"))

	ids := []string{"conn-a", "conn-b", "conn-c", "conn-d", "conn-e"}
	done := make(chan struct{})
	for _, id := range ids {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 50 {
				_ = room.SubmitClue(id, "c")
				_ = room.CastVote(id, "a")
				_ = rm.CheckCharacters(room.Code)
			}
		}()
	}
	for range ids {
		<-done
	}

	s := mustSnapshot(t, room)
	assert.LessOrEqual(t, s.Votes, len(s.Players))
	if s.Phase == PhaseClue {
		for _, p := range s.Players {
			if p.ID == s.CurrentPlayerID {
				assert.Nil(t, p.Clue, "current player has not submitted")
			}
		}
	}
}
