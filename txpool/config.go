package txpool

import "time"

// Config holds the core-relevant tx-pool tunables from .
type Config struct {
	LifeTime     time.Duration // txPoolLifeTime: max item age before deleteExpiredItems rejects it.
	PriceLimit   uint64        // txPriceLimit: minimum gas tip; stored and sanitized, but not checked by the pool.
	MaxRejects   int           // txTabMaxRejects: waste basket FIFO bound.
	PriceBump    uint64        // percentage a replacement at the same (sender, nonce) must beat the old item by.
	GlobalSlots  int           // slot cap across the whole pool; not enforced by the pool.
	AccountSlots int           // per-account slot cap; not enforced by the pool.
}

// DefaultConfig returns the production defaults, plus the slot-cap
// supplement carried over from core/txpool/legacypool.Config.
func DefaultConfig() Config {
	return Config{
		LifeTime:     3 * time.Hour,
		PriceLimit:   1,
		MaxRejects:   500,
		PriceBump:    10,
		GlobalSlots:  4096,
		AccountSlots: 16,
	}
}

func (c Config) sanitize() Config {
	d := DefaultConfig()
	if c.LifeTime == 0 {
		c.LifeTime = d.LifeTime
	}
	if c.PriceLimit == 0 {
		c.PriceLimit = d.PriceLimit
	}
	if c.MaxRejects == 0 {
		c.MaxRejects = d.MaxRejects
	}
	if c.PriceBump == 0 {
		c.PriceBump = d.PriceBump
	}
	if c.GlobalSlots == 0 {
		c.GlobalSlots = d.GlobalSlots
	}
	if c.AccountSlots == 0 {
		c.AccountSlots = d.AccountSlots
	}
	return c
}
