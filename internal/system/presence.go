package system

import (
	"context"
	"time"

	coresys "github.com/steerstone/server/internal/core/system"
	"github.com/steerstone/server/internal/world"
	"go.uber.org/zap"
)

// ActivityStore records when an account was last seen.
type ActivityStore interface {
	UpdateLastActive(ctx context.Context, name, ip string) error
}

// PresenceSystem periodically refreshes last_active for every logged-in
// account. Runs after output so a slow database never delays packets.
type PresenceSystem struct {
	world     *world.State
	accounts  ActivityStore
	log       *zap.Logger
	tickCount int
	interval  int // refresh every N ticks
}

func NewPresenceSystem(ws *world.State, accounts ActivityStore, log *zap.Logger, intervalTicks int) *PresenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &PresenceSystem{
		world:    ws,
		accounts: accounts,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PresenceSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *PresenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.RefreshAll()
}

// RefreshAll writes last_active for all players immediately. Also called on
// shutdown.
func (s *PresenceSystem) RefreshAll() {
	count := 0
	s.world.AllPlayers(func(p *world.Player) {
		ip := ""
		if p.Session != nil {
			ip = p.Session.IP
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.accounts.UpdateLastActive(ctx, p.Name, ip); err != nil {
			s.log.Warn("更新活躍時間失敗", zap.String("account", p.Name), zap.Error(err))
			return
		}
		count++
	})
	if count > 0 {
		s.log.Debug("活躍時間已更新", zap.Int("players", count))
	}
}
