package main

import (
	"flag"
	"fmt"

	"ekata-api/internal/cli"
	"ekata-api/internal/config"
	"ekata-api/internal/handler"
	"ekata-api/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/ekata.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(*cfg)
	handler.RegisterHandlers(server, ctx)
	cli.LogConfigSummary(cfg)

	ctx.Start()
	defer ctx.Stop()

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
