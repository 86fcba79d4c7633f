package main

import (
	"fmt"
	"os"

	actorkit "github.com/coreactor/actorkit"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "actorctl",
		Usage:   "inspect and control a running actorkitd over its admin HTTP surface",
		Version: actorkit.VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Value:   "http://localhost:7100",
				Usage:   "base URL of the admin HTTP surface",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "workers",
				Usage:  "list every worker and its state",
				Action: listWorkersCommand,
			},
			{
				Name:      "services",
				Usage:     "list the services running on a worker",
				ArgsUsage: "<worker-id>",
				Action:    listServicesCommand,
			},
			{
				Name:      "runcmd",
				Usage:     "dispatch a worker or service command",
				ArgsUsage: "<worker-id> <cmd>",
				Action:    runCmdCommand,
			},
			{
				Name:  "broadcast",
				Usage: "broadcast a message to every service in the runtime",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "header", Required: true},
					&cli.StringFlag{Name: "payload"},
				},
				Action: broadcastCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
