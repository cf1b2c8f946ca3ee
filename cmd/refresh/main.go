package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"ekata-api/internal/cli"
	"ekata-api/internal/config"
	"ekata-api/internal/svc"
)

// refresh runs one dashboard cycle against a running generation proxy and
// prints the resulting snapshot.
func main() {
	var (
		configFile = flag.String("f", "etc/ekata.yaml", "the config file")
		endpoint   = flag.String("endpoint", "", "generation proxy URL (defaults to the configured one)")
		journalDir = flag.String("journal", "", "write a cycle record to this directory")
	)
	flag.Parse()
	os.Exit(run(*configFile, *endpoint, *journalDir))
}

func run(configFile, endpoint, journalDir string) int {
	logx.MustSetup(logx.LogConf{Encoding: "plain"})
	logx.DisableStat()

	cfg := config.MustLoad(configFile)
	if endpoint != "" {
		cfg.Dashboard.GenerateURL = endpoint
	}
	if journalDir != "" {
		cfg.Dashboard.JournalDir = journalDir
	}
	// A one-shot run never schedules.
	cfg.Dashboard.RefreshCron = ""
	cfg.Dashboard.RefreshOnStart = false
	cli.LogConfigSummary(cfg)

	sc, err := svc.New(*cfg)
	if err != nil {
		logx.Errorf("init: %v", err)
		return 1
	}
	defer sc.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logx.Infof("refreshing dashboard via %s", cfg.GenerateEndpoint())
	snap := sc.Dashboard.Refresh(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		logx.Errorf("encode snapshot: %v", err)
		return 1
	}
	if !snap.Ready {
		return 2
	}
	return 0
}
