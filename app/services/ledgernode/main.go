// This is the entry point for running a ledger node.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/hanqo/ScaleOutDistributedLedger/app/services/ledgernode/handlers"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/events"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/abstractcache"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/comm"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/mainchain"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/node"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/peer"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/ledger/store"
	"github.com/hanqo/ScaleOutDistributedLedger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// config is everything an operator can set for one node process.
type config struct {
	conf.Version
	Web struct {
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		DebugHost       string        `conf:"default:0.0.0.0:7080"`
		PublicHost      string        `conf:"default:0.0.0.0:8080"`
		PrivateHost     string        `conf:"default:0.0.0.0:9080"`
	}
	Node struct {
		ID         uint32 `conf:"default:1"`
		KeyPath    string `conf:"default:zledger/node1.ed25519"`
		TrackerURL string
	}
	MainChain struct {
		URL string
	}
}

func main() {
	log, err := logger.New("LEDGERNODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "LEDGERNODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Node Identity

	priv, err := node.LoadKey(cfg.Node.KeyPath)
	if err != nil {
		return fmt.Errorf("loading node key: %w", err)
	}
	ownNode := node.NewLocal(node.ID(cfg.Node.ID), cfg.Web.PrivateHost, priv.Public(), priv)

	nodes := node.NewRegistry()
	peers := peer.NewSet()

	// =========================================================================
	// Event Stream
	//
	// Background machinery accepts a function of this signature to log and,
	// for now, send the same raw messages to any websocket client connected
	// through the events package.

	evts := events.New()
	ev := func(format string, args ...any) {
		s := fmt.Sprintf(format, args...)
		log.Infow(s)
		evts.Send(s)
	}

	// =========================================================================
	// Ledger Support

	var mc mainchain.Client
	if cfg.MainChain.URL != "" {
		mc = mainchain.NewHTTPClient(cfg.MainChain.URL)
	} else {
		mc = mainchain.NewMemory()
	}

	cache := abstractcache.New(mc, ev)
	cache.Run()
	defer cache.Shutdown()

	localStore := store.New(ownNode, nodes, mc, cache)

	// A tracker is the node's only source of peer discovery; without one,
	// the worker still runs, it just never learns of anyone to share with.
	var tracker comm.Tracker = noopTracker{}
	if cfg.Node.TrackerURL != "" {
		t := peer.NewTracker(cfg.Node.TrackerURL, peer.New(ownNode.ID, ownNode.Address))
		localStore.SetTracker(t)
		tracker = t
	}

	helper := comm.NewHelper(localStore)
	worker := comm.Run(helper, tracker, localStore, peer.NewWSDialer("ws"), peers, ev)
	defer worker.Shutdown()

	return startServers(cfg, build, log, localStore, worker, peers, evts)
}

// noopTracker satisfies comm.Tracker for a node running without a
// configured directory service: peer discovery simply never finds anyone.
type noopTracker struct{}

func (noopTracker) UpdateNodes() (map[node.ID]node.Node, error) {
	return nil, nil
}

func startServers(
	cfg config,
	build string,
	log *zap.SugaredLogger,
	localStore *store.LocalStore,
	worker *comm.Worker,
	peers *peer.Set,
	evts *events.Events,
) error {

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, localStore)
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	log.Infow("startup", "status", "initializing V1 public API support")
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Store:    localStore,
		Worker:   worker,
		Peers:    peers,
		Evts:     evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	log.Infow("startup", "status", "initializing V1 private API support")
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Worker:   worker,
	})

	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		evts.Shutdown()

		ctx, cancelPriv := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPriv()
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
