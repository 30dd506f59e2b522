// internal/daemon/runner.go
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goldium-io/gold-core/internal/api"
	"github.com/goldium-io/gold-core/internal/blockchain/solbc"
	"github.com/goldium-io/gold-core/internal/chain"
	"github.com/goldium-io/gold-core/internal/config"
	"github.com/goldium-io/gold-core/internal/events"
	"github.com/goldium-io/gold-core/internal/ledger"
	"github.com/goldium-io/gold-core/internal/logger"
	"github.com/goldium-io/gold-core/internal/metrics"
	"github.com/goldium-io/gold-core/internal/simulator"
	"github.com/goldium-io/gold-core/internal/staking"
	"github.com/goldium-io/gold-core/internal/storage/file"
	"github.com/goldium-io/gold-core/internal/storage/memory"
	"github.com/goldium-io/gold-core/internal/storage/postgres"
	"github.com/goldium-io/gold-core/internal/token"
	"github.com/goldium-io/gold-core/internal/transfer"
	"github.com/goldium-io/gold-core/internal/wallet"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// Runner собирает и запускает все компоненты демона.
type Runner struct {
	cfg     *config.Config
	log     *logger.Logger
	logger  *zap.Logger
	store   ledger.Store
	bus     *events.Bus
	sim     *simulator.Simulator
	sweeper *simulator.BridgeSweeper
	server  *api.Server
}

// NewRunner читает конфиг и поднимает зависимости. Сеть на этом шаге не трогается.
func NewRunner(configPath string) (*Runner, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if !cfg.DebugLogging {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Runner{cfg: cfg, log: log, logger: log.Named("goldd")}
	if err := r.build(); err != nil {
		r.close(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *Runner) build() error {
	cfg, lg := r.cfg, r.logger
	network := cfg.NetworkValue()

	collector := metrics.NewCollector()
	client := solbc.NewClient(cfg.RPCList[0], lg, solbc.WithObserver(collector))
	accessor := chain.NewAccessor(client, lg)

	registry := token.NewRegistry(lg)
	if cfg.TokenOverrides != "" {
		if err := registry.LoadOverrides(cfg.TokenOverrides); err != nil {
			return fmt.Errorf("token overrides: %w", err)
		}
	}

	store, err := openStore(cfg, lg)
	if err != nil {
		return err
	}
	r.store = store

	r.bus = events.NewBus(lg, 1024)
	collector.Subscribe(r.bus)

	l := ledger.New(store, lg, ledger.WithPublisher(r.bus))
	engine := staking.NewEngine(l, lg, staking.WithAPY(cfg.Staking.APYPercent))
	r.sim = simulator.New(l, lg,
		simulator.WithPublisher(r.bus),
		simulator.WithBridgeDelay(cfg.Bridge.Delay))

	r.sweeper, err = simulator.NewBridgeSweeper(r.sim, cfg.Bridge.SweepSpec, lg)
	if err != nil {
		return err
	}

	deps := api.Deps{
		Ledger:    l,
		Staking:   engine,
		Simulator: r.sim,
		Registry:  registry,
		Chain:     accessor,
		Metrics:   collector.Handler(),
		Network:   network,
		RateLimit: api.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RPS,
			Burst:             cfg.RateLimit.Burst,
		},
	}

	if cfg.Wallet.File != "" {
		signer, err := loadSigner(cfg.Wallet, lg)
		if err != nil {
			return err
		}
		deps.Signer = signer
		deps.Transfers = transfer.NewBuilder(client, lg, transfer.WithRecorder(collector))
		lg.Info("signing wallet loaded", zap.String("public_key", signer.PublicKey().String()))
	}

	r.server = api.NewServer(deps, lg)
	lg.Info("daemon initialized",
		zap.String("network", network.String()),
		zap.String("rpc", client.Endpoint()),
		zap.String("ledger_backend", cfg.Ledger.Backend))
	return nil
}

func openStore(cfg *config.Config, lg *zap.Logger) (ledger.Store, error) {
	switch cfg.Ledger.Backend {
	case config.BackendFile:
		return file.Open(cfg.Ledger.Path, lg)
	case config.BackendPostgres:
		return postgres.Open(cfg.PostgresURL, lg)
	case config.BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}

// loadSigner выбирает кошелёк по имени; без имени берётся первый по алфавиту.
func loadSigner(wc config.WalletConfig, lg *zap.Logger) (*wallet.Wallet, error) {
	wallets, err := wallet.LoadWallets(wc.File)
	if err != nil {
		if len(wallets) == 0 {
			return nil, fmt.Errorf("load wallets: %w", err)
		}
		lg.Warn("some wallets were skipped", zap.Error(err))
	}
	return selectWallet(wallets, wc.Name)
}

func selectWallet(wallets map[string]*wallet.Wallet, name string) (*wallet.Wallet, error) {
	if name != "" {
		w, ok := wallets[name]
		if !ok {
			return nil, fmt.Errorf("wallet %q not found", name)
		}
		return w, nil
	}
	names := make([]string, 0, len(wallets))
	for n := range wallets {
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, errors.New("no wallets loaded")
	}
	sort.Strings(names)
	return wallets[names[0]], nil
}

// Run обслуживает HTTP до отмены ctx или SIGINT/SIGTERM.
func (r *Runner) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// добиваем бриджи, оставшиеся pending после прошлого запуска
	if n, err := r.sim.SweepBridges(ctx); err != nil {
		r.logger.Warn("startup bridge sweep failed", zap.Error(err))
	} else if n > 0 {
		r.logger.Info("stale bridges completed on startup", zap.Int("count", n))
	}
	r.sweeper.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.server.ListenAndServe(r.cfg.ListenAddr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown requested")
	case runErr = <-errCh:
		if runErr != nil {
			r.logger.Error("http server stopped", zap.Error(runErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	r.close(shutdownCtx)
	return runErr
}

// close останавливает компоненты в обратном порядке.
func (r *Runner) close(ctx context.Context) {
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.logger.Warn("http shutdown", zap.Error(err))
		}
	}
	if r.sweeper != nil {
		r.sweeper.Stop(ctx)
	}
	if r.sim != nil {
		r.sim.Close()
	}
	if r.bus != nil {
		if err := r.bus.Shutdown(ctx); err != nil {
			r.logger.Warn("event bus shutdown", zap.Error(err))
		}
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.logger.Warn("ledger store close", zap.Error(err))
		}
	}
	r.logger.Info("goldd stopped")
	if err := r.log.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
	}
}
