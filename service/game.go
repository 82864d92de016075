package service

import (
	"context"
	"sync"
	"time"

	"go-catan/engine"
	"go-catan/entities"
	"go-catan/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/rand"
)

// Publisher receives every event after its transaction committed.
type Publisher interface {
	Publish(ctx context.Context, ev entities.GameEvent) error
}

// HexCache 地图列表缓存（可选）
// CachedHexes reports the generation current at read time. CacheHexes stores the
// listing only while that generation is unchanged and InvalidateHexes advances it.
type HexCache interface {
	CachedHexes(ctx context.Context) (hexes []entities.Hexagon, gen int64, ok bool, err error)
	CacheHexes(ctx context.Context, gen int64, hexes []entities.Hexagon, ttl time.Duration) error
	InvalidateHexes(ctx context.Context) error
}

type Options struct {
	Catalog        *engine.Catalog
	Logger         *zap.Logger
	Publisher      Publisher
	Cache          HexCache
	CacheTTL       time.Duration
	Rand           engine.Rand
	BankTradeRatio int
	JWTSecret      []byte
	AccessTTL      time.Duration
	PasswordCost   int
}

// Game runs every operation inside one store transaction and publishes after commit.
type Game struct {
	store     repository.Store
	catalog   *engine.Catalog
	log       *zap.Logger
	publisher Publisher
	cache     HexCache
	cacheTTL  time.Duration
	rng       engine.Rand
	ratio     int
	secret    []byte
	accessTTL time.Duration
	cost      int
}

func New(store repository.Store, opts Options) *Game {
	g := &Game{
		store:     store,
		catalog:   opts.Catalog,
		log:       opts.Logger,
		publisher: opts.Publisher,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		rng:       opts.Rand,
		ratio:     opts.BankTradeRatio,
		secret:    opts.JWTSecret,
		accessTTL: opts.AccessTTL,
		cost:      opts.PasswordCost,
	}
	if g.catalog == nil {
		g.catalog = engine.DefaultCatalog()
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	if g.rng == nil {
		g.rng = NewLockedRand(uint64(time.Now().UnixNano()))
	}
	if g.ratio <= 0 {
		g.ratio = 4
	}
	if g.accessTTL <= 0 {
		g.accessTTL = 24 * time.Hour
	}
	if g.cost == 0 {
		g.cost = bcrypt.DefaultCost
	}
	if g.cacheTTL <= 0 {
		g.cacheTTL = 10 * time.Minute
	}
	return g
}

// lockedRand serialises access to an x/exp/rand source, which is not safe for concurrent use.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(seed uint64) engine.Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

func (g *Game) publish(ctx context.Context, typ, username string, data map[string]any) {
	if g.publisher == nil {
		return
	}
	ev := entities.GameEvent{Type: typ, Username: username, Data: data, At: time.Now()}
	if err := g.publisher.Publish(ctx, ev); err != nil {
		g.log.Warn("事件发布失败", zap.String("type", typ), zap.Error(err))
	}
}

func (g *Game) invalidateHexes(ctx context.Context) {
	if g.cache == nil {
		return
	}
	if err := g.cache.InvalidateHexes(ctx); err != nil {
		g.log.Warn("清除地图缓存失败", zap.Error(err))
	}
}

// fail logs err at the level its kind deserves and hands it back unchanged.
func (g *Game) fail(action, username string, err error) error {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("username", username),
		zap.String("code", engine.CodeOf(err)),
		zap.Error(err),
	}
	switch engine.KindOf(err) {
	case engine.KindStorage:
		g.log.Error("操作失败", fields...)
	case engine.KindConflict:
		g.log.Info("操作冲突", fields...)
	default:
		g.log.Debug("操作被拒绝", fields...)
	}
	return err
}

func (g *Game) done(action, username string, fields ...zap.Field) {
	g.log.Info("操作成功", append([]zap.Field{zap.String("action", action), zap.String("username", username)}, fields...)...)
}

// lockCaller loads the session and the calling player, in that lock order.
func lockCaller(ctx context.Context, tx repository.Tx, username string) (entities.GameSession, entities.Player, error) {
	s, err := tx.LockSession(ctx)
	if err != nil {
		return s, entities.Player{}, err
	}
	p, err := tx.LockPlayerByUsername(ctx, username)
	return s, p, err
}
