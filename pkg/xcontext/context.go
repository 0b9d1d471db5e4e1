package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/questx-lab/settlement/config"
	"github.com/questx-lab/settlement/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey   struct{}
	loggerKey    struct{}
	dbKey        struct{}
	txKey        struct{}
	clockKey     struct{}
	requestIDKey struct{}
	declaredKey  struct{}
	httpKey      struct{}
)

// txHolder is shared by every context derived from the one that began the
// transaction, so commit and rollback are visible to all of them.
type txHolder struct {
	tx   *gorm.DB
	done bool
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the running transaction if there is one, otherwise the database.
func DB(ctx context.Context) *gorm.DB {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok && !holder.done {
		return holder.tx.WithContext(ctx)
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		panic("no database in context")
	}

	return db.WithContext(ctx)
}

func WithDBTransaction(ctx context.Context) context.Context {
	tx := DB(ctx).Begin()
	return context.WithValue(ctx, txKey{}, &txHolder{tx: tx})
}

// WithCommitDBTransaction commits the transaction started by WithDBTransaction.
// The returned context uses the database directly.
func WithCommitDBTransaction(ctx context.Context) (context.Context, error) {
	holder, ok := ctx.Value(txKey{}).(*txHolder)
	if !ok || holder.done {
		return ctx, nil
	}

	holder.done = true
	if err := holder.tx.Commit().Error; err != nil {
		return ctx, err
	}

	return ctx, nil
}

// WithRollbackDBTransaction rollbacks the transaction if it was not committed.
// It is safe to defer right after WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	holder, ok := ctx.Value(txKey{}).(*txHolder)
	if !ok || holder.done {
		return ctx
	}

	holder.done = true
	if err := holder.tx.Rollback().Error; err != nil {
		Logger(ctx).Errorf("Cannot rollback transaction: %v", err)
	}

	return ctx
}

func WithClock(ctx context.Context, now func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, now)
}

// Now is the time every settlement operation sees. Tests replace it with
// WithClock.
func Now(ctx context.Context) time.Time {
	now, ok := ctx.Value(clockKey{}).(func() time.Time)
	if !ok {
		return time.Now()
	}

	return now()
}

// WithDeclaredAccounts restricts record access to the given addresses for
// the rest of the request.
func WithDeclaredAccounts(ctx context.Context, addrs []string) context.Context {
	set := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		set[a] = struct{}{}
	}

	return context.WithValue(ctx, declaredKey{}, set)
}

// AccountDeclared reports whether addr may be touched. Without a declared
// set every address is allowed.
func AccountDeclared(ctx context.Context, addr string) bool {
	set, ok := ctx.Value(declaredKey{}).(map[string]struct{})
	if !ok {
		return true
	}

	_, ok = set[addr]
	return ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}

func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpKey{}, client)
}

func HTTPClient(ctx context.Context) *http.Client {
	client, ok := ctx.Value(httpKey{}).(*http.Client)
	if !ok {
		return http.DefaultClient
	}

	return client
}
