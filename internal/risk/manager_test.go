package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crypto-trading-bot/internal/types"
)

func testConfig() Config {
	return Config{
		MaxPositionPercent: 10,
		StopLossPercent:    2,
		TakeProfitPercent:  5,
		MaxDailyTrades:     3,
		MinTradeInterval:   5 * time.Minute,
	}
}

// fakeClock drives the manager's notion of now.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager() (*Manager, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewManagerWithClock(testConfig(), clk.now), clk
}

func TestCanOpenTradeFirstTradeAllowed(t *testing.T) {
	m, _ := newTestManager()

	got := m.CanOpenTrade()

	assert.True(t, got.Allowed, "First trade must not be blocked by the interval gate")
}

func TestCanOpenTradeMinIntervalEnforced(t *testing.T) {
	m, clk := newTestManager()

	m.RegisterTrade()

	clk.advance(4 * time.Minute)
	denied := m.CanOpenTrade()
	assert.False(t, denied.Allowed)
	assert.Contains(t, denied.Reason, "Min interval")

	clk.advance(1*time.Minute + time.Second)
	allowed := m.CanOpenTrade()
	assert.True(t, allowed.Allowed, "Trade must be allowed once the interval elapses")
}

func TestCanOpenTradeDailyLimit(t *testing.T) {
	m, clk := newTestManager()

	for i := 0; i < 3; i++ {
		assert.True(t, m.CanOpenTrade().Allowed)
		m.RegisterTrade()
		clk.advance(10 * time.Minute)
	}

	denied := m.CanOpenTrade()
	assert.False(t, denied.Allowed)
	assert.Contains(t, denied.Reason, "Daily trade limit")
}

func TestDailyCounterResetsOnDateChange(t *testing.T) {
	m, clk := newTestManager()

	for i := 0; i < 3; i++ {
		m.RegisterTrade()
		clk.advance(10 * time.Minute)
	}
	assert.False(t, m.CanOpenTrade().Allowed)

	// Next calendar day: the counter rolls over to zero.
	clk.advance(24 * time.Hour)
	allowed := m.CanOpenTrade()
	assert.True(t, allowed.Allowed)
	assert.Equal(t, 0, m.Stats().DailyTradeCount)
}

func TestCalculatePositionSizeLong(t *testing.T) {
	m, _ := newTestManager()

	size := m.CalculatePositionSize(10000, 50000, types.SideLong)

	assert.InDelta(t, 1000, size.AmountInQuote, 1e-9, "10 percent of balance")
	assert.InDelta(t, 0.02, size.AmountInBase, 1e-9)
	assert.InDelta(t, 49000, size.StopLoss, 1e-9, "2 percent below entry")
	assert.InDelta(t, 52500, size.TakeProfit, 1e-9, "5 percent above entry")
}

func TestCalculatePositionSizeShortInvertsLevels(t *testing.T) {
	m, _ := newTestManager()

	size := m.CalculatePositionSize(10000, 50000, types.SideShort)

	assert.InDelta(t, 51000, size.StopLoss, 1e-9, "2 percent above entry")
	assert.InDelta(t, 47500, size.TakeProfit, 1e-9, "5 percent below entry")
}

func TestShouldClosePositionLong(t *testing.T) {
	m, _ := newTestManager()

	cases := []struct {
		name    string
		current float64
		close   bool
		reason  string
	}{
		{"stop loss", 97, true, "Stop Loss hit"},
		{"take profit", 106, true, "Take Profit hit"},
		{"in range", 101, false, ""},
		{"exactly at stop", 98, true, "Stop Loss hit"},
		{"exactly at target", 105, true, "Take Profit hit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := m.ShouldClosePosition(100, tc.current, types.SideLong, 98, 105)
			assert.Equal(t, tc.close, got.ShouldClose)
			assert.Equal(t, tc.reason, got.Reason)
		})
	}
}

func TestShouldClosePositionShortInverts(t *testing.T) {
	m, _ := newTestManager()

	stop := m.ShouldClosePosition(100, 103, types.SideShort, 102, 95)
	assert.True(t, stop.ShouldClose)
	assert.Equal(t, "Stop Loss hit", stop.Reason)

	target := m.ShouldClosePosition(100, 94, types.SideShort, 102, 95)
	assert.True(t, target.ShouldClose)
	assert.Equal(t, "Take Profit hit", target.Reason)

	hold := m.ShouldClosePosition(100, 99, types.SideShort, 102, 95)
	assert.False(t, hold.ShouldClose)
}

func TestCalculateProfitLoss(t *testing.T) {
	m, _ := newTestManager()

	profit, pct := m.CalculateProfitLoss(100, 110, 2, types.SideLong)
	assert.InDelta(t, 20, profit, 1e-9)
	assert.InDelta(t, 10, pct, 1e-9)

	profit, pct = m.CalculateProfitLoss(100, 110, 2, types.SideShort)
	assert.InDelta(t, -20, profit, 1e-9)
	assert.InDelta(t, -10, pct, 1e-9)
}

func TestCalculateProfitLossZeroAmount(t *testing.T) {
	m, _ := newTestManager()

	profit, pct := m.CalculateProfitLoss(100, 110, 0, types.SideLong)

	assert.Zero(t, profit)
	assert.Zero(t, pct, "A zero-size position must report zero percent, not NaN")
}

func TestUpdateConfigKeepsCounters(t *testing.T) {
	m, clk := newTestManager()
	m.RegisterTrade()
	clk.advance(time.Minute)

	cfg := m.Config()
	cfg.MaxDailyTrades = 5
	m.UpdateConfig(cfg)

	stats := m.Stats()
	assert.Equal(t, 1, stats.DailyTradeCount, "Counters must survive a config update")
	assert.Equal(t, 5, stats.MaxDailyTrades)
}
