package health

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Checkable represents a component that can report its health status.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// Report is the body of the health endpoint
type Report struct {
	Status     string            `json:"status"`
	Uptime     float64           `json:"uptime"`
	Components map[string]string `json:"components,omitempty"`
}

// Checker aggregates health checks for multiple components.
type Checker struct {
	log     *slog.Logger
	started time.Time
	now     func() time.Time
	names   []string
	checks  map[string]Checkable
}

// NewChecker instantiates a Checker; uptime is counted from this call.
func NewChecker(log *slog.Logger) *Checker {
	return &Checker{
		log:     log,
		started: time.Now(),
		now:     time.Now,
		checks:  make(map[string]Checkable),
	}
}

// AddCheck registers a checkable component by name.
func (c *Checker) AddCheck(name string, check Checkable) {
	if name == "" || check == nil {
		return
	}
	if _, exists := c.checks[name]; !exists {
		c.names = append(c.names, name)
		sort.Strings(c.names)
	}
	c.checks[name] = check
}

// Check runs all registered health checks. Status is "OK" only when every component is.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{
		Status: "OK",
		Uptime: c.now().Sub(c.started).Seconds(),
	}
	if len(c.names) == 0 {
		return report
	}

	report.Components = make(map[string]string, len(c.names))
	for _, name := range c.names {
		if err := c.checks[name].HealthCheck(ctx); err != nil {
			report.Components[name] = err.Error()
			report.Status = "DEGRADED"
			if c.log != nil {
				c.log.Error("health check failed", slog.String("component", name), slog.Any("error", err))
			}
			continue
		}
		report.Components[name] = "OK"
	}
	return report
}

// DBPinger is satisfied by *pgxpool.Pool
type DBPinger interface {
	Ping(ctx context.Context) error
}

// DBChecker verifies connectivity to PostgreSQL.
type DBChecker struct {
	db DBPinger
}

func NewDBChecker(db DBPinger) *DBChecker {
	return &DBChecker{db: db}
}

// HealthCheck pings the database to ensure it is reachable.
func (c *DBChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.db == nil {
		return errors.New("database is not configured")
	}
	return c.db.Ping(ctx)
}

// Pinger abstracts the subset of redis.Client used for health checks.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisChecker verifies connectivity to a Redis instance.
type RedisChecker struct {
	pinger Pinger
}

func NewRedisChecker(pinger Pinger) *RedisChecker {
	return &RedisChecker{pinger: pinger}
}

// HealthCheck issues a PING command against Redis.
func (c *RedisChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.pinger == nil {
		return redis.ErrClosed
	}
	return c.pinger.Ping(ctx).Err()
}
