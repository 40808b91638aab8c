package sqlite

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/sshpoker/sshpoker/internal/model"
)

// Row types mapped by bun. The fingerprint is the primary key everywhere;
// wallet, stats and session rows reference the same key.

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	Fingerprint string    `bun:"fingerprint,pk"`
	Username    string    `bun:"username,notnull"`
	FirstSeen   time.Time `bun:"first_seen,notnull"`
}

type walletRow struct {
	bun.BaseModel `bun:"table:wallets"`

	Fingerprint string `bun:"fingerprint,pk"`
	Balance     int64  `bun:"balance,notnull"`
}

type statsRow struct {
	bun.BaseModel `bun:"table:stats"`

	Fingerprint string `bun:"fingerprint,pk"`
	GamesPlayed int64  `bun:"games_played,notnull,default:0"`
	Wins        int64  `bun:"wins,notnull,default:0"`
	Losses      int64  `bun:"losses,notnull,default:0"`
	Winnings    int64  `bun:"winnings,notnull,default:0"`
}

type sessionRow struct {
	bun.BaseModel `bun:"table:sessions"`

	Fingerprint string    `bun:"fingerprint,pk"`
	LoginTime   time.Time `bun:"login_time,notnull"`
	Host        string    `bun:"host,notnull"`
	Port        int       `bun:"port,notnull"`
}

func (r *userRow) toModel() model.User {
	return model.User{
		Fingerprint: model.Fingerprint(r.Fingerprint),
		Username:    r.Username,
		FirstSeen:   r.FirstSeen,
	}
}

func (r *walletRow) toModel() model.Wallet {
	return model.Wallet{
		Fingerprint: model.Fingerprint(r.Fingerprint),
		Balance:     r.Balance,
	}
}

func (r *statsRow) toModel() model.Stats {
	return model.Stats{
		Fingerprint: model.Fingerprint(r.Fingerprint),
		GamesPlayed: r.GamesPlayed,
		Wins:        r.Wins,
		Losses:      r.Losses,
		Winnings:    r.Winnings,
	}
}

func (r *sessionRow) toModel() model.Session {
	return model.Session{
		Fingerprint: model.Fingerprint(r.Fingerprint),
		LoginTime:   r.LoginTime,
		Host:        r.Host,
		Port:        r.Port,
	}
}
