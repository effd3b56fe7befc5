package handler

import (
	"context"
	"time"

	"github.com/steerstone/server/internal/core/event"
	"github.com/steerstone/server/internal/net"
	"go.uber.org/zap"
)

// HandleDisconnect cleans up after a closed session: the avatar leaves its
// room, the player is dropped from the world and the account marked offline.
// Called by InputSystem.
func HandleDisconnect(sess *net.Session, deps *Deps) {
	p := deps.World.GetBySession(sess.ID)
	if p != nil {
		if p.InRoom() {
			leaveRoom(p, deps)
		}
		deps.World.RemovePlayer(sess.ID)
	}

	if sess.AccountName == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := deps.Accounts.SetOnline(ctx, sess.AccountName, false); err != nil {
		deps.Log.Warn("更新離線狀態失敗", zap.String("account", sess.AccountName), zap.Error(err))
	}
	event.Emit(deps.Bus, event.SessionClosed{SessionID: sess.ID, AccountName: sess.AccountName})
	deps.Log.Info("玩家離線", zap.String("account", sess.AccountName))
}
