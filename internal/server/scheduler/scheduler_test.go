package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/palemoky/codenames-arena/internal/apperrors"
	"github.com/palemoky/codenames-arena/internal/game"
	"github.com/palemoky/codenames-arena/internal/game/room"
	"github.com/palemoky/codenames-arena/internal/game/rule"
	"github.com/palemoky/codenames-arena/internal/server/session"
)

type dispatched struct {
	roomCode string
	playerID string
	action   rule.Action
}

// fakeDispatcher 记录提交的动作
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatched
	err   error
	fired chan struct{}
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{fired: make(chan struct{}, 16)}
}

func (d *fakeDispatcher) Dispatch(roomCode, playerID string, action rule.Action) (*game.GameState, error) {
	d.mu.Lock()
	d.calls = append(d.calls, dispatched{roomCode, playerID, action})
	err := d.err
	d.mu.Unlock()
	d.fired <- struct{}{}
	return nil, err
}

func (d *fakeDispatcher) Calls() []dispatched {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatched(nil), d.calls...)
}

func timedState(stage game.TurnStage, seq int, version int64) *game.GameState {
	s := game.NewGameState("ROOM", game.DefaultSettings(), time.Now())
	s.Settings.TimedMode = game.TimedMode{Enabled: true, SpymasterTime: 40, GuesserTime: 20}
	s.Phase = game.PhasePlaying
	s.Stage = stage
	s.StageSeq = seq
	s.Version = version
	s.CurrentTurnStartTime = time.Now()
	return s
}

func waitFired(t *testing.T, d *fakeDispatcher) {
	t.Helper()
	select {
	case <-d.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("计时器未触发")
	}
}

func TestScheduler_FiresTimerExpired(t *testing.T) {
	t.Parallel()
	d := newFakeDispatcher()
	s := New(d, time.Millisecond)
	defer s.Stop()

	s.Sync("ROOM", timedState(game.StageAwaitingGuess, 3, 1))
	assert.Equal(t, 1, s.Active())
	deadline, ok := s.Deadline("ROOM")
	require.True(t, ok)
	assert.False(t, deadline.IsZero())

	waitFired(t, d)
	calls := d.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ROOM", calls[0].roomCode)
	assert.Empty(t, calls[0].playerID, "超时动作没有发起玩家")
	assert.Equal(t, rule.TimerExpired(3), calls[0].action)
	assert.Zero(t, s.Active())
}

func TestScheduler_NoTimerWhenUntimedOrNotPlaying(t *testing.T) {
	t.Parallel()
	s := New(newFakeDispatcher(), time.Millisecond)
	defer s.Stop()

	untimed := timedState(game.StageAwaitingGuess, 1, 1)
	untimed.Settings.TimedMode.Enabled = false
	s.Sync("A", untimed)

	ended := timedState(game.StageNone, 2, 1)
	ended.Phase = game.PhaseEnded
	s.Sync("B", ended)

	assert.Zero(t, s.Active())
}

func TestScheduler_SameStageKeepsTimer(t *testing.T) {
	t.Parallel()
	s := New(newFakeDispatcher(), time.Hour)
	defer s.Stop()

	s.Sync("ROOM", timedState(game.StageAwaitingGuess, 5, 1))
	first, _ := s.Deadline("ROOM")

	later := timedState(game.StageAwaitingGuess, 5, 2)
	later.CurrentTurnStartTime = later.CurrentTurnStartTime.Add(time.Minute)
	s.Sync("ROOM", later)
	second, _ := s.Deadline("ROOM")
	assert.Equal(t, first, second, "揭牌不重置计时")

	s.Sync("ROOM", timedState(game.StageAwaitingClue, 6, 3))
	third, _ := s.Deadline("ROOM")
	assert.NotEqual(t, first, third)
	assert.Equal(t, 1, s.Active())
}

func TestScheduler_IgnoresOlderVersion(t *testing.T) {
	t.Parallel()
	s := New(newFakeDispatcher(), time.Hour)
	defer s.Stop()

	ended := timedState(game.StageNone, 9, 10)
	ended.Phase = game.PhaseEnded
	s.Sync("ROOM", ended)

	s.Sync("ROOM", timedState(game.StageAwaitingGuess, 8, 9))
	assert.Zero(t, s.Active(), "旧版本不能重新开始计时")
}

func TestScheduler_Cancel(t *testing.T) {
	t.Parallel()
	d := newFakeDispatcher()
	s := New(d, 5*time.Millisecond)
	defer s.Stop()

	s.Sync("ROOM", timedState(game.StageAwaitingGuess, 1, 1))
	s.Cancel("ROOM")
	assert.Zero(t, s.Active())

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, d.Calls())
}

func TestScheduler_StopIgnoresLaterSync(t *testing.T) {
	t.Parallel()
	s := New(newFakeDispatcher(), time.Hour)

	s.Sync("A", timedState(game.StageAwaitingGuess, 1, 1))
	s.Stop()
	assert.Zero(t, s.Active())

	s.Sync("B", timedState(game.StageAwaitingGuess, 1, 1))
	assert.Zero(t, s.Active())
}

func TestScheduler_StaleTimerIsDropped(t *testing.T) {
	t.Parallel()
	d := newFakeDispatcher()
	d.err = apperrors.ErrStaleTimer
	s := New(d, time.Millisecond)
	defer s.Stop()

	s.Sync("ROOM", timedState(game.StageAwaitingGuess, 1, 1))
	waitFired(t, d)
	assert.Zero(t, s.Active())
}

// 限时模式下无人操作，服务器自动交换回合，效果与主动放弃一致
func TestScheduler_AutoPassThroughSessionManager(t *testing.T) {
	t.Parallel()

	settings := game.DefaultSettings()
	settings.TimedMode = game.TimedMode{Enabled: true, SpymasterTime: 600, GuesserTime: 30}
	rooms := room.NewRoomManager(room.WithPasswordCost(bcrypt.MinCost))
	m := session.NewManager(rooms, rule.NewEngine(nil), session.NewTokenIssuer("k", time.Hour), session.Config{Defaults: settings})
	pub := &session.RecordingPublisher{}
	m.SetPublisher(pub)

	s := New(m, time.Millisecond)
	defer s.Stop()
	m.SetScheduler(s)

	alice, err := m.CreateRoom("Alice", "")
	require.NoError(t, err)
	bob, err := m.JoinRoom(alice.RoomCode, "Bob", "", "", "")
	require.NoError(t, err)
	carol, err := m.JoinRoom(alice.RoomCode, "Carol", "", "", "")
	require.NoError(t, err)
	dave, err := m.JoinRoom(alice.RoomCode, "Dave", "", "", "")
	require.NoError(t, err)

	roles := map[game.Team][2]string{
		game.TeamDark:  {alice.PlayerID, bob.PlayerID},
		game.TeamLight: {carol.PlayerID, dave.PlayerID},
	}
	for team, ids := range roles {
		_, err = m.Dispatch(alice.RoomCode, ids[0], rule.JoinTeam(team, game.RoleSpymaster))
		require.NoError(t, err)
		_, err = m.Dispatch(alice.RoomCode, ids[1], rule.JoinTeam(team, game.RoleGuesser))
		require.NoError(t, err)
	}

	state, err := m.Dispatch(alice.RoomCode, alice.PlayerID, rule.StartGame())
	require.NoError(t, err)
	team := state.CurrentTeam
	_, err = m.Dispatch(alice.RoomCode, roles[team][0], rule.GiveClue("OCEAN", 1))
	require.NoError(t, err)

	var passed *rule.Event
	require.Eventually(t, func() bool {
		for _, c := range pub.Calls() {
			for _, ev := range c.Events {
				if ev.Type == rule.EventTurnPassed {
					passed = &ev
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, rule.PassReasonTimer, passed.Reason)
	assert.Equal(t, team.Opponent(), passed.Team)

	after, err := m.Snapshot(alice.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, team.Opponent(), after.CurrentTeam)
	assert.Equal(t, game.StageAwaitingClue, after.Stage)
	assert.Equal(t, 1, after.ConsecutivePasses[team])
	assert.Equal(t, 1, s.Active(), "新回合重新计时")
}
