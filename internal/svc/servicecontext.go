package svc

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	cachekeys "stockbar/internal/cache"
	"stockbar/internal/config"
	"stockbar/internal/model"
	quotepersist "stockbar/internal/persistence/quotes"
	statepersist "stockbar/internal/persistence/state"
	"stockbar/internal/persistence/store"
	"stockbar/internal/repo"
	"stockbar/pkg/fx"
	"stockbar/pkg/fx/erapi"
	"stockbar/pkg/journal"
	"stockbar/pkg/portfolio"
	"stockbar/pkg/quote"
	_ "stockbar/pkg/quote/sim"
	_ "stockbar/pkg/quote/yahoo"
	"stockbar/pkg/refresh"
)

type ServiceContext struct {
	Config *config.Config

	QuoteConfig     *quote.Config
	QuoteProviders  map[string]quote.Provider
	DefaultQuote    quote.Provider
	DefaultProvider string

	FxHolder    *fx.Holder
	FxRefresher *fx.Refresher

	Book              *portfolio.Book
	PreferredCurrency string

	RefreshConfig *refresh.Config
	Coordinator   *refresh.Coordinator
	Orchestrator  *refresh.Orchestrator
	Journal       *journal.Writer

	StateStore *store.Store

	// Optional DB-backed persistence; nil without a Postgres DSN.
	DBConn           sqlx.SqlConn
	SnapshotsModel   model.SnapshotsModel
	HoldingsModel    model.HoldingsModel
	SymbolStateModel model.SymbolStateModel
	FxRatesModel     model.FxRatesModel
	Cache            gocache.Cache
	TTL              cachekeys.TTLSet
	QuotePersistence quote.Persistence
	StateMirror      *statepersist.Service
	Repos            *repo.Set
}

func NewServiceContext(c *config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config: c,
		TTL:    cachekeys.NewTTLSet(c.TTL),
	}

	// Quote providers
	if c.Quote.Value == nil {
		log.Fatalf("quote config is required")
	}
	providers, err := c.Quote.Value.BuildProviders()
	if err != nil {
		log.Fatalf("failed to build quote providers: %v", err)
	}
	svc.QuoteConfig = c.Quote.Value
	svc.QuoteProviders = providers
	svc.DefaultProvider = c.Quote.Value.Default
	svc.DefaultQuote = providers[c.Quote.Value.Default]
	if svc.DefaultQuote == nil {
		log.Fatalf("default quote provider %q is not configured", c.Quote.Value.Default)
	}

	// Exchange rates: start from the hardcoded table so conversion works
	// before the first live fetch lands.
	svc.FxHolder = fx.NewHolder(fx.FallbackTable())
	if c.FX.Value != nil {
		fxCfg := c.FX.Value
		client := erapi.NewClient(
			erapi.WithBase(fxCfg.Base),
			erapi.WithBaseURL(fxCfg.BaseURL),
			erapi.WithHTTPClient(&http.Client{Timeout: fxCfg.Timeout}),
		)
		svc.FxRefresher = fx.NewRefresher(client, svc.FxHolder, fxCfg.RefreshInterval)
	}

	// Portfolio book
	svc.Book = portfolio.NewBook()
	if c.Portfolio.Value != nil {
		svc.Book.SetHoldings(c.Portfolio.Value.ToHoldings())
		svc.PreferredCurrency = c.Portfolio.Value.PreferredCurrency
	}
	if svc.PreferredCurrency == "" {
		svc.PreferredCurrency = "USD"
	}

	// Refresh coordinator and orchestrator
	var coordCfg refresh.CoordinatorConfig
	if c.Refresh.Value != nil {
		svc.RefreshConfig = c.Refresh.Value
		coordCfg = c.Refresh.Value.CoordinatorConfig()
	}
	svc.Coordinator = refresh.NewCoordinator(coordCfg)
	if c.Refresh.Value != nil && c.Refresh.Value.JournalDir != "" {
		svc.Journal = journal.NewWriter(c.Refresh.Value.JournalDir)
	}

	// Durable state file for restarts
	svc.StateStore = store.New(c.StatePath)

	// Only inject DB models when a DSN is provided; refresh works without them.
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn

		cacheConf := gocache.CacheConf{}
		if strings.TrimSpace(c.Redis.Host) != "" {
			cacheConf = append(cacheConf, gocache.NodeConf{RedisConf: c.Redis, Weight: 100})
			svc.Cache = gocache.New(cacheConf, syncx.NewSingleFlight(), gocache.NewStat(cachekeys.Namespace), model.ErrNotFound)
		}

		svc.SnapshotsModel = model.NewSnapshotsModel(conn, cacheConf)
		svc.HoldingsModel = model.NewHoldingsModel(conn, cacheConf)
		svc.SymbolStateModel = model.NewSymbolStateModel(conn, cacheConf)
		svc.FxRatesModel = model.NewFxRatesModel(conn, cacheConf)

		svc.QuotePersistence = quotepersist.NewService(quotepersist.Config{
			SQLConn:        conn,
			SnapshotsModel: svc.SnapshotsModel,
			Cache:          svc.Cache,
			TTL:            svc.TTL,
		})
		svc.StateMirror = statepersist.NewService(statepersist.Config{
			SQLConn:          conn,
			SymbolStateModel: svc.SymbolStateModel,
			FxRatesModel:     svc.FxRatesModel,
			Cache:            svc.Cache,
			TTL:              svc.TTL,
		})
		repos, err := repo.New(repo.Dependencies{
			DBConn:           conn,
			Cache:            svc.Cache,
			TTL:              svc.TTL,
			SnapshotsModel:   svc.SnapshotsModel,
			HoldingsModel:    svc.HoldingsModel,
			SymbolStateModel: svc.SymbolStateModel,
			FxRatesModel:     svc.FxRatesModel,
		})
		if err != nil {
			log.Fatalf("failed to build repositories: %v", err)
		}
		svc.Repos = repos
	}

	// The holdings file wins; the database fills in only when no file entry
	// exists, so a fresh checkout can still track a previously synced book.
	if len(svc.Book.Holdings()) == 0 && svc.Repos != nil {
		if holdings, err := svc.Repos.Holdings.List(context.Background()); err != nil {
			logx.Errorf("load holdings from db: %v", err)
		} else if len(holdings) > 0 {
			svc.Book.SetHoldings(holdings)
		}
	}
	svc.syncHoldings(context.Background())

	orchOpts := []refresh.Option{refresh.WithProviderName(svc.DefaultProvider)}
	if svc.QuotePersistence != nil {
		orchOpts = append(orchOpts, refresh.WithPersistence(svc.QuotePersistence))
	}
	if svc.Journal != nil {
		orchOpts = append(orchOpts, refresh.WithJournal(svc.Journal))
	}
	orchOpts = append(orchOpts, refresh.WithSuspendHook(func(st refresh.SymbolStatus) {
		logx.Infof("symbol %s suspended until %s after %d failures", st.Symbol, st.ResumeAt.Format("15:04:05"), st.Failures)
	}))
	svc.Orchestrator = refresh.NewOrchestrator(svc.Coordinator, svc.Book, svc.DefaultQuote, orchOpts...)

	svc.restoreState()
	return svc
}

// syncHoldings mirrors the book's holdings to the database. Costs are
// already in pounds at this point; the repo upserts them verbatim.
func (s *ServiceContext) syncHoldings(ctx context.Context) {
	if s.Repos == nil {
		return
	}
	holdings := s.Book.Holdings()
	if len(holdings) == 0 {
		return
	}
	if err := s.Repos.Holdings.Sync(ctx, holdings); err != nil {
		logx.Errorf("sync holdings to db: %v", err)
	}
}

// restoreState reloads snapshots, coordinator bookkeeping and the rate table
// saved by a previous run. A missing or unreadable file means a cold start;
// with a database configured, a cold start falls back to the rows mirrored
// by the last run.
func (s *ServiceContext) restoreState() {
	state, err := s.StateStore.Load()
	if err != nil {
		logx.Errorf("state restore: %v", err)
		return
	}
	if state == nil {
		s.restoreFromDB()
		return
	}
	if len(state.Snapshots) > 0 {
		s.Book.RestoreSnapshots(state.Snapshots)
	}
	if len(state.Coordinator) > 0 {
		s.Coordinator.Restore(state.Coordinator)
	}
	if state.Rates != nil && !state.Rates.Fallback {
		s.FxHolder.Replace(state.Rates)
	}
	logx.Infof("restored state from %s: %d snapshots, %d symbol records", s.StateStore.Path(), len(state.Snapshots), len(state.Coordinator))
}

// restoreFromDB seeds the book from the last mirrored snapshots when no
// local state file exists. Coordinator bookkeeping is not rebuilt from the
// mirror; suspended symbols are only reported so the operator knows why a
// quote may lag.
func (s *ServiceContext) restoreFromDB() {
	if s.Repos == nil {
		return
	}
	ctx := context.Background()
	if snapshots, err := s.Repos.History.LatestSnapshots(ctx, s.DefaultProvider); err != nil {
		logx.Errorf("restore snapshots from db: %v", err)
	} else if len(snapshots) > 0 {
		s.Book.RestoreSnapshots(snapshots)
		logx.Infof("restored %d snapshots from database", len(snapshots))
	}
	if suspended, err := s.Repos.History.SuspendedSymbols(ctx, time.Now()); err != nil {
		logx.Errorf("list suspended symbols from db: %v", err)
	} else if len(suspended) > 0 {
		logx.Infof("symbols suspended by the previous run: %s", strings.Join(suspended, ", "))
	}
}

// SaveState flushes the current in-memory state to disk and, when a
// database is configured, mirrors it there as well. Database errors are
// logged only; the local file is the source of truth on restart.
func (s *ServiceContext) SaveState() error {
	states := s.Coordinator.Export()
	rates := s.FxHolder.Current()

	if s.StateMirror != nil {
		ctx := context.Background()
		if err := s.StateMirror.RecordSymbolStates(ctx, states); err != nil {
			logx.Errorf("state mirror: symbol states: %v", err)
		}
		if err := s.StateMirror.RecordRates(ctx, rates); err != nil {
			logx.Errorf("state mirror: rates: %v", err)
		}
	}

	return s.StateStore.Save(&store.State{
		Snapshots:   s.Book.Snapshots(),
		Coordinator: states,
		Rates:       rates,
	})
}
