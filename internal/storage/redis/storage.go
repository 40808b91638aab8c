package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sshpoker/sshpoker/internal/model"
	"github.com/sshpoker/sshpoker/internal/storage"
)

// maxUpdateRetries bounds optimistic-lock retries on contended keys.
const maxUpdateRetries = 5

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) GetUser(ctx context.Context, fp model.Fingerprint) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(fp)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetProfile(ctx context.Context, fp model.Fingerprint) (*model.Profile, error) {
	// Fetch user, wallet and stats in one round trip
	pipe := s.client.Pipeline()
	userCmd := pipe.Get(ctx, userKey(fp))
	walletCmd := pipe.Get(ctx, walletKey(fp))
	statsCmd := pipe.Get(ctx, statsKey(fp))
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal([]byte(userCmd.Val()), &profile.User); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(walletCmd.Val()), &profile.Wallet); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(statsCmd.Val()), &profile.Stats); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) GetBalance(ctx context.Context, fp model.Fingerprint) (int64, error) {
	data, err := s.client.Get(ctx, walletKey(fp)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrUserNotFound
		}
		return 0, err
	}

	var wallet model.Wallet
	if err := json.Unmarshal(data, &wallet); err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *Storage) CreateUser(ctx context.Context, user *model.User, startingBalance int64) error {
	userData, err := json.Marshal(user)
	if err != nil {
		return err
	}
	walletData, err := json.Marshal(&model.Wallet{Fingerprint: user.Fingerprint, Balance: startingBalance})
	if err != nil {
		return err
	}
	statsData, err := json.Marshal(&model.Stats{Fingerprint: user.Fingerprint})
	if err != nil {
		return err
	}

	// All three rows go through one MULTI/EXEC so no partial set is visible
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.Fingerprint), userData, 0)
	pipe.Set(ctx, walletKey(user.Fingerprint), walletData, 0)
	pipe.Set(ctx, statsKey(user.Fingerprint), statsData, 0)
	_, err = pipe.Exec(ctx)
	return err
}

// UpdateUsername rewrites the user value under WATCH so a concurrent write
// to the same key cannot be lost; a conflicted attempt is retried.
func (s *Storage) UpdateUsername(ctx context.Context, fp model.Fingerprint, username string) error {
	key := userKey(fp)
	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrUserNotFound
			}
			return err
		}

		var user model.User
		if err := json.Unmarshal(data, &user); err != nil {
			return err
		}
		user.Username = username

		updated, err := json.Marshal(&user)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := s.client.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) (*model.Session, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	// HSETNX is the conditional insert: it only writes when no field exists
	// for the fingerprint, so two concurrent logins cannot both win.
	inserted, err := s.client.HSetNX(ctx, sessionsKey(), string(session.Fingerprint), data).Result()
	if err != nil {
		return nil, err
	}
	if inserted {
		return nil, nil
	}

	existing, err := s.client.HGet(ctx, sessionsKey(), string(session.Fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Lost a race with a logout between HSETNX and HGET; treat the
			// insert attempt as having found no prior session.
			return nil, nil
		}
		return nil, err
	}

	var prior model.Session
	if err := json.Unmarshal(existing, &prior); err != nil {
		return nil, err
	}
	return &prior, nil
}

func (s *Storage) DeleteSession(ctx context.Context, fp model.Fingerprint) (bool, error) {
	removed, err := s.client.HDel(ctx, sessionsKey(), string(fp)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]model.Session, error) {
	entries, err := s.client.HGetAll(ctx, sessionsKey()).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]model.Session, 0, len(entries))
	for _, raw := range entries {
		var sess model.Session
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *Storage) ClearSessions(ctx context.Context) error {
	return s.client.Del(ctx, sessionsKey()).Err()
}
