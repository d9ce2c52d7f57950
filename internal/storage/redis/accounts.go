package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

const keyPrefix = "ledger:account:"

// AccountCache wraps a LedgerStore and keeps account lookups in Redis.
// Only found accounts are cached; misses always reach the store so a newly
// opened account resolves immediately.
type AccountCache struct {
	interfaces.LedgerStore
	rdb    *goredis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewAccountCache(store interfaces.LedgerStore, rdb *goredis.Client, ttl time.Duration, logger logrus.FieldLogger) *AccountCache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AccountCache{
		LedgerStore: store,
		rdb:         rdb,
		ttl:         ttl,
		logger:      logger,
	}
}

func accountKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// GetAccount serves from Redis when possible. Redis errors are logged and the
// store is used instead.
func (c *AccountCache) GetAccount(ctx context.Context, accountId int64) (models.Account, error) {
	key := accountKey(accountId)

	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var account models.Account
		if err := json.Unmarshal([]byte(val), &account); err == nil {
			return account, nil
		}
		_ = c.rdb.Del(ctx, key).Err() // corrupt entry
	case !errors.Is(err, goredis.Nil):
		c.logger.WithFields(logrus.Fields{
			"account_id": accountId,
			"error":      err.Error(),
		}).Warn("Account cache read failed")
	}

	account, err := c.LedgerStore.GetAccount(ctx, accountId)
	if err != nil {
		return models.Account{}, err
	}

	b, err := json.Marshal(account)
	if err == nil {
		err = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"account_id": accountId,
			"error":      err.Error(),
		}).Warn("Account cache write failed")
	}
	return account, nil
}

// Invalidate drops the cached copy of an account.
func (c *AccountCache) Invalidate(ctx context.Context, accountId int64) error {
	return c.rdb.Del(ctx, accountKey(accountId)).Err()
}

var _ interfaces.LedgerStore = (*AccountCache)(nil)
