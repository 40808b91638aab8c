package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *bun.DB
}

// New opens (creating if necessary) the SQLite database at the given path
// and ensures the schema exists.
func New(path string) (*Storage, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent workers.
	sqldb.SetMaxOpenConns(1)

	s := &Storage{db: bun.NewDB(sqldb, sqlitedialect.New())}
	if err := s.createTables(context.Background()); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) createTables(ctx context.Context) error {
	models := []any{
		(*userRow)(nil),
		(*walletRow)(nil),
		(*statsRow)(nil),
		(*sessionRow)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// User operations

func (s *Storage) GetUser(ctx context.Context, fp model.Fingerprint) (*model.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("fingerprint = ?", string(fp)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	user := row.toModel()
	return &user, nil
}

func (s *Storage) GetProfile(ctx context.Context, fp model.Fingerprint) (*model.Profile, error) {
	var (
		user   userRow
		wallet walletRow
		stats  statsRow
	)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&user).Where("fingerprint = ?", string(fp)).Scan(ctx); err != nil {
			return err
		}
		if err := tx.NewSelect().Model(&wallet).Where("fingerprint = ?", string(fp)).Scan(ctx); err != nil {
			return err
		}
		return tx.NewSelect().Model(&stats).Where("fingerprint = ?", string(fp)).Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &model.Profile{
		User:   user.toModel(),
		Wallet: wallet.toModel(),
		Stats:  stats.toModel(),
	}, nil
}

func (s *Storage) GetBalance(ctx context.Context, fp model.Fingerprint) (int64, error) {
	var row walletRow
	err := s.db.NewSelect().Model(&row).Where("fingerprint = ?", string(fp)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrUserNotFound
		}
		return 0, err
	}
	return row.Balance, nil
}

// CreateUser inserts user, wallet and stats rows in one transaction; a failed
// insert rolls back the whole provisioning.
func (s *Storage) CreateUser(ctx context.Context, user *model.User, startingBalance int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&userRow{
			Fingerprint: string(user.Fingerprint),
			Username:    user.Username,
			FirstSeen:   user.FirstSeen,
		}).Exec(ctx); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if _, err := tx.NewInsert().Model(&walletRow{
			Fingerprint: string(user.Fingerprint),
			Balance:     startingBalance,
		}).Exec(ctx); err != nil {
			return fmt.Errorf("insert wallet: %w", err)
		}
		if _, err := tx.NewInsert().Model(&statsRow{
			Fingerprint: string(user.Fingerprint),
		}).Exec(ctx); err != nil {
			return fmt.Errorf("insert stats: %w", err)
		}
		return nil
	})
}

func (s *Storage) UpdateUsername(ctx context.Context, fp model.Fingerprint, username string) error {
	res, err := s.db.NewUpdate().Model((*userRow)(nil)).
		Set("username = ?", username).
		Where("fingerprint = ?", string(fp)).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Session operations

// CreateSession relies on the primary-key constraint for the conditional
// insert: ON CONFLICT DO NOTHING plus a read-back in the same transaction
// means two concurrent logins for one fingerprint cannot both create a row.
func (s *Storage) CreateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	var existing *model.Session
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().Model(&sessionRow{
			Fingerprint: string(session.Fingerprint),
			LoginTime:   session.LoginTime,
			Host:        session.Host,
			Port:        session.Port,
		}).On("CONFLICT (fingerprint) DO NOTHING").Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected > 0 {
			return nil
		}

		var row sessionRow
		if err := tx.NewSelect().Model(&row).Where("fingerprint = ?", string(session.Fingerprint)).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		prior := row.toModel()
		existing = &prior
		return nil
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Storage) DeleteSession(ctx context.Context, fp model.Fingerprint) (bool, error) {
	res, err := s.db.NewDelete().Model((*sessionRow)(nil)).Where("fingerprint = ?", string(fp)).Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]model.Session, error) {
	var rows []sessionRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("login_time").Scan(ctx); err != nil {
		return nil, err
	}
	sessions := make([]model.Session, 0, len(rows))
	for i := range rows {
		sessions = append(sessions, rows[i].toModel())
	}
	return sessions, nil
}

func (s *Storage) ClearSessions(ctx context.Context) error {
	_, err := s.db.NewTruncateTable().Model((*sessionRow)(nil)).Exec(ctx)
	return err
}
