package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/persist"
	"github.com/steerstone/server/internal/world"
	"go.uber.org/zap"
)

const maxNameLen = 32

// HandleLogin processes LOGIN.
// Format: [opcode][name\0][password\0]
func HandleLogin(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := strings.ToLower(strings.TrimSpace(r.ReadS()))
	password := r.ReadS()
	if name == "" || len(name) > maxNameLen || password == "" {
		sendLoginFail(sess, deps, packet.LoginFailBadCredentials)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	account, err := deps.Accounts.Load(ctx, name)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		if !deps.Config.Server.AutoCreateAccounts {
			sendLoginFail(sess, deps, packet.LoginFailBadCredentials)
			return
		}
		account, err = deps.Accounts.Create(ctx, name, password, sess.IP)
		if err != nil {
			deps.Log.Error("建立帳號失敗", zap.String("account", name), zap.Error(err))
			sendLoginFail(sess, deps, packet.LoginFailServerError)
			return
		}
		deps.Log.Info("自動建立帳號", zap.String("account", name))
	case err != nil:
		deps.Log.Error("載入帳號資料庫錯誤", zap.String("account", name), zap.Error(err))
		sendLoginFail(sess, deps, packet.LoginFailServerError)
		return
	default:
		if !persist.CheckPassword(account.PasswordHash, password) {
			sess.Log().Info("密碼錯誤", zap.String("account", name))
			sendLoginFail(sess, deps, packet.LoginFailBadCredentials)
			return
		}
	}

	if account.Banned {
		sendLoginFail(sess, deps, packet.LoginFailBanned)
		return
	}
	if deps.World.GetByName(account.Name) != nil {
		sendLoginFail(sess, deps, packet.LoginFailAlreadyOnline)
		return
	}

	sess.AccountID = account.ID
	sess.AccountName = account.Name
	sess.Rank = account.Rank
	sess.SetState(packet.StateAuthenticated)

	deps.World.AddPlayer(&world.Player{
		SessionID: sess.ID,
		Session:   sess,
		AccountID: account.ID,
		Name:      account.Name,
		Rank:      account.Rank,
	})

	if err := deps.Accounts.SetOnline(ctx, account.Name, true); err != nil {
		deps.Log.Warn("更新上線狀態失敗", zap.String("account", account.Name), zap.Error(err))
	}
	if err := deps.Accounts.UpdateLastActive(ctx, account.Name, sess.IP); err != nil {
		deps.Log.Warn("更新最後活動時間失敗", zap.String("account", account.Name), zap.Error(err))
	}

	w := packet.NewWriter(packet.S_OPCODE_LOGIN_OK, deps.Enc)
	w.WriteD(account.ID)
	w.WriteS(account.Name)
	w.WriteH(uint16(account.Rank))
	sess.Send(w.Bytes())

	deps.Log.Info("玩家登入", zap.String("account", account.Name), zap.String("ip", sess.IP))
}

func sendLoginFail(sess *net.Session, deps *Deps, reason byte) {
	w := packet.NewWriter(packet.S_OPCODE_LOGIN_FAIL, deps.Enc)
	w.WriteC(reason)
	sess.Send(w.Bytes())
}
