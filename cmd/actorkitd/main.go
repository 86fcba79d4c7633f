package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	actorkit "github.com/coreactor/actorkit"
	"github.com/coreactor/actorkit/config"
	logging "github.com/coreactor/actorkit/log"
	"github.com/coreactor/actorkit/runtime"

	log "github.com/sirupsen/logrus"
)

func main() {
	processArgs()

	var cfg config.RuntimeConfig
	if err := config.LoadConfigWithDefaults("actorkitd", &cfg, config.RuntimeConfigDefaults); err != nil {
		fmt.Fprintf(os.Stderr, "actorkitd: loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Initialize(cfg.Log)

	rt := runtime.New(cfg)
	rt.Start()
	log.WithField("workers", len(rt.Workers())).Info("actorkitd started")

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	<-termChan

	log.Debug("actorkitd terminating")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.Stop(ctx); err != nil {
		log.WithError(err).Warn("actorkitd shutdown error")
	}

	log.Debug("actorkitd exiting")
}

func processArgs() {
	if len(os.Args) > 1 {
		r := regexp.MustCompile("^-V$|(-{2})?version$")
		if r.MatchString(os.Args[1]) {
			fmt.Println(actorkit.VERSION)
			os.Exit(0)
		}
	}
}
