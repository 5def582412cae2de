package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/tanks/game"
	"github.com/brensch/tanks/strategy"
)

func TestNew_RejectsBadInput(t *testing.T) {
	board := boardFrom("1 2")

	_, err := New(nil, DefaultSettings(10, 1), nil, strategy.Script{})
	assert.Error(t, err)

	_, err = New(board, DefaultSettings(10, 1), nil, nil)
	assert.Error(t, err)

	_, err = New(board, DefaultSettings(0, 1), nil, strategy.Script{})
	assert.Error(t, err)

	s := DefaultSettings(10, 1)
	s.ReloadTicks = -1
	_, err = New(board, s, nil, strategy.Script{})
	assert.Error(t, err)
}

func TestNew_ScansTanksRowMajor(t *testing.T) {
	e := newEngine(t, DefaultSettings(10, 3), boardFrom(
		"2 1",
		"1 2",
	), strategy.Script{})

	s := e.State()
	require.Len(t, s.Tanks, 4)
	want := []struct {
		player, index int
		pos           game.Point
	}{
		{2, 0, game.Point{X: 0, Y: 0}},
		{1, 0, game.Point{X: 2, Y: 0}},
		{1, 1, game.Point{X: 0, Y: 1}},
		{2, 1, game.Point{X: 2, Y: 1}},
	}
	for i, w := range want {
		tank := s.Tanks[i]
		assert.Equal(t, i, tank.ID)
		assert.Equal(t, w.player, tank.Player)
		assert.Equal(t, w.index, tank.Index)
		assert.Equal(t, w.pos, tank.Pos)
		assert.Equal(t, game.InitialDirection(w.player), tank.Dir)
		assert.Equal(t, 3, tank.Shells)
		assert.True(t, tank.Alive)
	}
}

func TestAdvance_MoveForwardIntoEmpty(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 5), boardFrom(
		"     ",
		" 1  2",
		"     ",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveForward},
	}))

	recs := advance(t, "move forward", e, 1)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Turn)
	assert.Equal(t, "MoveForward, DoNothing", recs[0].Line)

	tank, _ := e.Tank(1, 0)
	assert.Equal(t, game.Point{X: 0, Y: 1}, tank.Pos)
	s := e.State()
	assert.Equal(t, game.Tank1, s.Board.Get(game.Point{X: 0, Y: 1}).Kind)
	assert.Equal(t, game.Empty, s.Board.Get(game.Point{X: 1, Y: 1}).Kind)
}

func TestAdvance_MoveForwardIntoWallIgnored(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 5), boardFrom(
		"     ",
		"#1  2",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveForward},
	}))

	recs := advance(t, "move into wall", e, 1)
	assert.Equal(t, "MoveForward (ignored), DoNothing", recs[0].Line)
	assert.True(t, recs[0].Tanks[0].Ignored)

	tank, _ := e.Tank(1, 0)
	assert.Equal(t, game.Point{X: 1, Y: 1}, tank.Pos)
	assert.Equal(t, game.Wall, e.State().Board.Get(game.Point{X: 0, Y: 1}).Kind)
}

func TestAdvance_ShootThroughOneWall(t *testing.T) {
	settings := DefaultSettings(100, 10)
	settings.ReloadTicks = 0
	e := newEngine(t, settings, boardFrom("2  #  1"), script(map[[2]int][]game.Action{
		{1, 0}: repeat(game.Shoot, strategy.ShotsNeeded(1)),
	}))
	wall := game.Point{X: 3, Y: 0}

	advance(t, "first shot", e, 1)
	c := e.State().Board.Get(wall)
	assert.Equal(t, game.Wall, c.Kind)
	assert.Equal(t, 1, c.WallHits)

	advance(t, "second shot", e, 1)
	assert.Equal(t, game.Empty, e.State().Board.Get(wall).Kind)

	recs := advance(t, "third shot", e, 10)
	require.Len(t, recs, 3)
	assert.Equal(t, "killed, DoNothing", recs[2].Line)
	assert.True(t, e.IsGameOver())
	assert.Equal(t, Player1Wins, e.Result().Outcome)
	assert.Equal(t, "Player 1 won with 1 tanks still alive", e.Result().String())

	tank, _ := e.Tank(1, 0)
	assert.Equal(t, 10-3, tank.Shells)
}

func TestAdvance_ShootThroughOneWall_WithReload(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 10), boardFrom("2  #  1"), script(map[[2]int][]game.Action{
		{1, 0}: repeat(game.Shoot, 12),
	}))

	recs := advance(t, "reloading", e, 20)
	require.Len(t, recs, 11)
	for _, turn := range []int{2, 3, 4, 6, 7, 8, 10} {
		assert.Equal(t, "DoNothing, Shoot (ignored)", recs[turn-1].Line, "turn %d", turn)
	}
	for _, turn := range []int{1, 5, 9} {
		assert.Equal(t, "DoNothing, Shoot", recs[turn-1].Line, "turn %d", turn)
	}
	assert.Equal(t, "killed, Shoot (ignored)", recs[10].Line)

	tank, _ := e.Tank(1, 0)
	assert.Equal(t, 7, tank.Shells)
	assert.Equal(t, Player1Wins, e.Result().Outcome)
}

func TestAdvance_ShellCadence(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"2           ",
		"           1",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.Shoot},
	}))

	advance(t, "cadence", e, 1)
	s := e.State()
	require.Len(t, s.Shells, 1)
	// spawned at x=10, two unit steps later
	assert.Equal(t, game.Point{X: 8, Y: 1}, s.Shells[0].Pos)
	assert.Equal(t, game.Left, s.Shells[0].Dir)
	assert.True(t, s.Board.Get(game.Point{X: 8, Y: 1}).ShellOverlay)
}

func TestAdvance_ShellsMeetOnSameSubStep(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"         ",
		"2       1",
		"         ",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.Shoot},
		{2, 0}: {game.Shoot},
	}))

	advance(t, "shells fired", e, 1)
	s := e.State()
	require.Len(t, s.Shells, 2)
	assert.True(t, s.Board.Get(game.Point{X: 3, Y: 1}).ShellOverlay)
	assert.True(t, s.Board.Get(game.Point{X: 5, Y: 1}).ShellOverlay)

	advance(t, "shells collide", e, 1)
	s = e.State()
	assert.Empty(t, s.Shells)
	for x := 0; x < s.Board.Width; x++ {
		assert.False(t, s.Board.Get(game.Point{X: x, Y: 1}).ShellOverlay, "x=%d", x)
	}
	assert.Equal(t, 2, s.AliveCount(1)+s.AliveCount(2))
}

func TestAdvance_LastTankOnMine(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"2 @1",
		"2   ",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveForward},
	}))

	recs := advance(t, "mine", e, 1)
	assert.Equal(t, "DoNothing, MoveForward (killed), DoNothing", recs[0].Line)
	assert.True(t, e.IsGameOver())
	assert.Equal(t, "Player 2 won with 2 tanks still alive", e.Result().String())
	assert.Equal(t, 2, e.Result().Winner())
	assert.Equal(t, game.Empty, e.State().Board.Get(game.Point{X: 2, Y: 0}).Kind)
	assert.Equal(t, game.Empty, e.State().Board.Get(game.Point{X: 3, Y: 0}).Kind)

	rec, ok := e.Advance()
	assert.False(t, ok)
	assert.Equal(t, TurnRecord{}, rec)
	assert.Equal(t, 1, e.Step())
}

func TestAdvance_DeadTankLogsKilled(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"2 @1",
		"   1",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveForward, game.MoveForward},
	}))

	recs := advance(t, "dead token", e, 2)
	require.Len(t, recs, 2)
	assert.Equal(t, "DoNothing, MoveForward (killed), DoNothing", recs[0].Line)
	assert.Equal(t, "DoNothing, killed, DoNothing", recs[1].Line)
	assert.True(t, recs[1].Tanks[1].Dead)
	assert.False(t, e.IsGameOver())
}

func TestAdvance_HeadOnSwap(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(" 21 "), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveForward},
		{2, 0}: {game.MoveForward},
	}))

	recs := advance(t, "head on", e, 1)
	assert.Equal(t, "MoveForward (killed), MoveForward (killed)", recs[0].Line)
	assert.Equal(t, TieNoTanks, e.Result().Outcome)
	assert.Equal(t, "Tie, both players have zero tanks", e.Result().String())
}

func TestAdvance_MoveIntoStationaryTank(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(" 21 "), script(map[[2]int][]game.Action{
		{2, 0}: {game.MoveForward},
	}))

	recs := advance(t, "ram", e, 1)
	assert.Equal(t, "MoveForward (killed), killed", recs[0].Line)
	assert.Equal(t, TieNoTanks, e.Result().Outcome)
	s := e.State()
	assert.Equal(t, game.Empty, s.Board.Get(game.Point{X: 1, Y: 0}).Kind)
	assert.Equal(t, game.Empty, s.Board.Get(game.Point{X: 2, Y: 0}).Kind)
}

func TestAdvance_SharedDestination(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom("2 1  "), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveForward},
		{2, 0}: {game.MoveForward},
	}))

	recs := advance(t, "shared destination", e, 1)
	assert.Equal(t, "MoveForward (killed), MoveForward (killed)", recs[0].Line)
	assert.Equal(t, TieNoTanks, e.Result().Outcome)
	assert.Equal(t, game.Empty, e.State().Board.Get(game.Point{X: 1, Y: 0}).Kind)
}

func TestAdvance_FollowerTakesVacatedCell(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom("  11 2"), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveForward},
		{1, 1}: {game.MoveForward},
	}))

	recs := advance(t, "follow", e, 1)
	assert.Equal(t, "MoveForward, MoveForward, DoNothing", recs[0].Line)
	a, _ := e.Tank(1, 0)
	b, _ := e.Tank(1, 1)
	assert.Equal(t, game.Point{X: 1, Y: 0}, a.Pos)
	assert.Equal(t, game.Point{X: 2, Y: 0}, b.Pos)
	s := e.State()
	assert.Equal(t, game.Tank1, s.Board.Get(game.Point{X: 1, Y: 0}).Kind)
	assert.Equal(t, game.Tank1, s.Board.Get(game.Point{X: 2, Y: 0}).Kind)
	assert.Equal(t, game.Empty, s.Board.Get(game.Point{X: 3, Y: 0}).Kind)
}

func TestAdvance_TankLandsOnShell(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"        ",
		"2   1   ",
	), script(map[[2]int][]game.Action{
		{2, 0}: {game.Shoot},
		{1, 0}: {game.DoNothing, game.MoveForward},
	}))

	advance(t, "shell in flight", e, 1)
	require.Len(t, e.State().Shells, 1)
	assert.Equal(t, game.Point{X: 3, Y: 1}, e.State().Shells[0].Pos)

	recs := advance(t, "drive into shell", e, 1)
	assert.Equal(t, "DoNothing, MoveForward (killed)", recs[0].Line)
	assert.Empty(t, e.State().Shells)
	assert.Equal(t, "Player 2 won with 1 tanks still alive", e.Result().String())
}

func TestAdvance_AmmoGating(t *testing.T) {
	settings := DefaultSettings(100, 1)
	settings.ReloadTicks = 0
	e := newEngine(t, settings, boardFrom(
		"2      ",
		"       ",
		"      1",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.Shoot, game.Shoot},
	}))

	recs := advance(t, "ammo", e, 2)
	assert.Equal(t, "DoNothing, Shoot", recs[0].Line)
	assert.Equal(t, "DoNothing, Shoot (ignored)", recs[1].Line)
	tank, _ := e.Tank(1, 0)
	assert.Equal(t, 0, tank.Shells)
	assert.Len(t, e.State().Shells, 1)
}

func TestAdvance_ReloadCooldown(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 5), boardFrom(
		"2      ",
		"       ",
		"      1",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.Shoot, game.Shoot},
	}))

	advance(t, "fire", e, 1)
	tank, _ := e.Tank(1, 0)
	assert.Equal(t, DefaultReloadTicks, tank.Cooldown)
	assert.Equal(t, 4, tank.Shells)

	recs := advance(t, "reloading", e, 1)
	assert.Equal(t, "DoNothing, Shoot (ignored)", recs[0].Line)
	tank, _ = e.Tank(1, 0)
	assert.Equal(t, DefaultReloadTicks-1, tank.Cooldown)
	assert.Equal(t, 4, tank.Shells)
}

func TestAdvance_BackwardMoveWraps(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"2    ",
		"    1",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveBackward},
	}))

	recs := advance(t, "backward wrap", e, 1)
	assert.Equal(t, "DoNothing, MoveBackward", recs[0].Line)
	tank, _ := e.Tank(1, 0)
	assert.Equal(t, game.Point{X: 0, Y: 1}, tank.Pos)
	assert.Equal(t, game.Left, tank.Dir)
}

func TestAdvance_BackwardIntoWrappedWallIgnored(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"2    ",
		"#   1",
	), script(map[[2]int][]game.Action{
		{1, 0}: {game.MoveBackward},
	}))

	recs := advance(t, "backward wall", e, 1)
	assert.Equal(t, "DoNothing, MoveBackward (ignored)", recs[0].Line)
	tank, _ := e.Tank(1, 0)
	assert.Equal(t, game.Point{X: 4, Y: 1}, tank.Pos)
}

func TestAdvance_ForwardEdgePolicy(t *testing.T) {
	rows := []string{
		"    2",
		"1    ",
	}
	actions := map[[2]int][]game.Action{{1, 0}: {game.MoveForward}}

	t.Run("wrap", func(t *testing.T) {
		e := newEngine(t, DefaultSettings(100, 1), boardFrom(rows...), script(actions))
		recs := advance(t, "forward wrap", e, 1)
		assert.Equal(t, "DoNothing, MoveForward", recs[0].Line)
		tank, _ := e.Tank(1, 0)
		assert.Equal(t, game.Point{X: 4, Y: 1}, tank.Pos)
	})

	t.Run("bounded", func(t *testing.T) {
		settings := DefaultSettings(100, 1)
		settings.WrapForward = false
		e := newEngine(t, settings, boardFrom(rows...), script(actions))
		recs := advance(t, "forward bounded", e, 1)
		assert.Equal(t, "DoNothing, MoveForward (ignored)", recs[0].Line)
		tank, _ := e.Tank(1, 0)
		assert.Equal(t, game.Point{X: 0, Y: 1}, tank.Pos)
	})
}

func TestAdvance_Rotations(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom("1  2"), script(map[[2]int][]game.Action{
		{1, 0}: {game.RotateLeft45, game.RotateRight90, game.RotateLeft90, game.RotateRight45},
	}))

	want := []game.Direction{game.DownLeft, game.UpLeft, game.DownLeft, game.Left}
	for i, dir := range want {
		advance(t, "rotate", e, 1)
		tank, _ := e.Tank(1, 0)
		assert.Equal(t, dir, tank.Dir, "turn %d", i+1)
	}
}

func TestAdvance_BattleInfoRoundTrip(t *testing.T) {
	p1 := strategy.NewScripted(game.GetBattleInfo, game.MoveForward, game.GetBattleInfo, game.GetBattleInfo)
	e := newEngine(t, DefaultSettings(100, 6), boardFrom(
		"2      ",
		"       ",
		"   1   ",
	), strategy.Script{
		{1, 0}: p1,
		{2, 0}: strategy.NewScripted(game.Shoot),
	})

	recs := advance(t, "info then move", e, 1)
	assert.Equal(t, "Shoot, GetBattleInfo", recs[0].Line)
	assert.Equal(t, game.GetBattleInfo, recs[0].Tanks[1].Requested)
	assert.Equal(t, game.MoveForward, recs[0].Tanks[1].Executed)
	tank, _ := e.Tank(1, 0)
	assert.Equal(t, game.Point{X: 2, Y: 2}, tank.Pos)

	require.Len(t, p1.Infos, 1)
	first := p1.Infos[0]
	assert.Equal(t, game.Point{X: 3, Y: 2}, first.Self)
	assert.Equal(t, 6, first.ShellsLeft)
	assert.Equal(t, byte('%'), first.Grid[2][3])
	assert.Equal(t, byte('2'), first.Grid[0][0])

	recs = advance(t, "info twice", e, 1)
	assert.Equal(t, "DoNothing, GetBattleInfo", recs[0].Line)
	assert.Equal(t, game.DoNothing, recs[0].Tanks[1].Executed)
	tank, _ = e.Tank(1, 0)
	assert.Equal(t, game.Point{X: 2, Y: 2}, tank.Pos)

	require.Len(t, p1.Infos, 2)
	second := p1.Infos[1]
	assert.Equal(t, -1, second.ShellsLeft)
	assert.Equal(t, game.Point{X: 2, Y: 2}, second.Self)
	// the shell fired on turn 1 ended that turn at x=3
	assert.Equal(t, byte('*'), second.Grid[0][3])
}

func TestSatelliteView_LegendAndCopy(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom(
		"#@ 2",
		"1   ",
	), strategy.Script{})

	v, ok := e.SatelliteView(1, 0)
	require.True(t, ok)
	t.Logf("view for player 1:\n%s", v.String())
	assert.Equal(t, byte('#'), v.ObjectAt(0, 0))
	assert.Equal(t, byte('@'), v.ObjectAt(1, 0))
	assert.Equal(t, byte(' '), v.ObjectAt(2, 0))
	assert.Equal(t, byte('2'), v.ObjectAt(3, 0))
	assert.Equal(t, byte('%'), v.ObjectAt(0, 1))
	assert.Equal(t, byte('&'), v.ObjectAt(-1, 0))
	assert.Equal(t, byte('&'), v.ObjectAt(4, 0))
	assert.Equal(t, byte('&'), v.ObjectAt(0, 2))

	v2, ok := e.SatelliteView(2, 0)
	require.True(t, ok)
	assert.Equal(t, byte('%'), v2.ObjectAt(3, 0))
	assert.Equal(t, byte('1'), v2.ObjectAt(0, 1))
	assert.NotSame(t, v, v2)

	_, ok = e.SatelliteView(1, 5)
	assert.False(t, ok)
}

func TestState_IsDeepCopy(t *testing.T) {
	e := newEngine(t, DefaultSettings(100, 1), boardFrom("1 #2"), strategy.Script{})

	s := e.State()
	s.Board.Set(game.Point{X: 2, Y: 0}, game.Empty)
	s.Tanks[0].Alive = false

	again := e.State()
	assert.Equal(t, game.Wall, again.Board.Get(game.Point{X: 2, Y: 0}).Kind)
	assert.True(t, again.Tanks[0].Alive)
}

func TestAdvance_MaxStepsTie(t *testing.T) {
	e := newEngine(t, DefaultSettings(3, 1), boardFrom("2  1"), strategy.Script{})

	recs := advance(t, "max steps", e, 10)
	assert.Len(t, recs, 3)
	assert.Equal(t, TieMaxSteps, e.Result().Outcome)
	assert.Equal(t, "Tie, reached max steps=3, player1 has 1, player2 has 1", e.Result().String())
	assert.Equal(t, 0, e.Result().Winner())
}

func TestAdvance_ShellStarvationTie(t *testing.T) {
	settings := DefaultSettings(100, 0)
	settings.ShellStarvationTicks = 2
	e := newEngine(t, settings, boardFrom("2  1"), strategy.Script{})

	recs := advance(t, "starvation", e, 10)
	assert.Len(t, recs, 2)
	assert.Equal(t, TieNoShells, e.Result().Outcome)
	assert.Equal(t, "Tie, both players have zero shells for 2 steps", e.Result().String())
}

func TestAdvance_StarvationDisabledByDefault(t *testing.T) {
	e := newEngine(t, DefaultSettings(5, 0), boardFrom("2  1"), strategy.Script{})

	recs := advance(t, "no starvation", e, 10)
	assert.Len(t, recs, 5)
	assert.Equal(t, TieMaxSteps, e.Result().Outcome)
}

func TestAdvance_TwoTanksOntoOneMine(t *testing.T) {
	for _, tc := range []struct {
		name  string
		row   string
		act   game.Action
		first int
	}{
		{name: "player 2 born first", row: " 2@1 ", act: game.MoveForward, first: 2},
		{name: "player 1 born first", row: " 1@2 ", act: game.MoveBackward, first: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, DefaultSettings(100, 1), boardFrom(tc.row), script(map[[2]int][]game.Action{
				{1, 0}: {tc.act},
				{2, 0}: {tc.act},
			}))
			require.Equal(t, tc.first, e.State().Tanks[0].Player)

			recs := advance(t, tc.name, e, 1)
			want := tc.act.String() + " (killed)"
			assert.Equal(t, want+", "+want, recs[0].Line)
			assert.Equal(t, "Tie, both players have zero tanks", e.Result().String())
			s := e.State()
			assert.Equal(t, game.Mine, s.Board.Get(game.Point{X: 2, Y: 0}).Kind, "nobody reached the mine")
			assert.Equal(t, game.Empty, s.Board.Get(game.Point{X: 1, Y: 0}).Kind)
			assert.Equal(t, game.Empty, s.Board.Get(game.Point{X: 3, Y: 0}).Kind)
		})
	}
}

func TestAdvance_SharedDestinationEitherOrder(t *testing.T) {
	for _, tc := range []struct {
		row string
		act game.Action
	}{
		{row: "2 1  ", act: game.MoveForward},
		{row: " 1 2 ", act: game.MoveBackward},
	} {
		e := newEngine(t, DefaultSettings(100, 1), boardFrom(tc.row), script(map[[2]int][]game.Action{
			{1, 0}: {tc.act},
			{2, 0}: {tc.act},
		}))
		recs := advance(t, tc.row, e, 1)
		want := tc.act.String() + " (killed)"
		assert.Equal(t, want+", "+want, recs[0].Line, "row %q", tc.row)
		assert.Equal(t, TieNoTanks, e.Result().Outcome, "row %q", tc.row)
	}
}

func TestAdvance_ShellsCrossBetweenSubSteps(t *testing.T) {
	for _, tc := range []struct {
		name  string
		row   string
		after [2]game.Point
	}{
		// shells end tick 1 at x=3 and x=6, then swap through cells 4 and 5
		{name: "facing each other", row: "2        1", after: [2]game.Point{{X: 3, Y: 0}, {X: 6, Y: 0}}},
		// same gap across the wrapped edge, player 1 born first
		{name: "across the edge", row: "    1          2    ", after: [2]game.Point{{X: 1, Y: 0}, {X: 18, Y: 0}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, DefaultSettings(100, 1), boardFrom(tc.row), script(map[[2]int][]game.Action{
				{1, 0}: {game.Shoot},
				{2, 0}: {game.Shoot},
			}))

			advance(t, tc.name, e, 1)
			s := e.State()
			require.Len(t, s.Shells, 2)
			for _, p := range tc.after {
				assert.True(t, s.Board.Get(p).ShellOverlay, "shell at %v", p)
			}

			advance(t, tc.name, e, 1)
			s = e.State()
			assert.Empty(t, s.Shells, "crossing shells annihilate")
			assert.Equal(t, 1, s.AliveCount(1))
			assert.Equal(t, 1, s.AliveCount(2))
		})
	}
}

func TestShellMoves_VisitOncePerShell(t *testing.T) {
	m := &shellMoves{visits: make(map[game.Point][]int)}
	p := game.Point{X: 0, Y: 0}
	m.visit(p, 0)
	m.visit(p, 0)
	assert.Equal(t, []int{0}, m.visits[p], "a shell wrapping onto its own cell does not collide with itself")
	m.visit(p, 1)
	assert.Equal(t, []int{0, 1}, m.visits[p])
}
