package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ottmarv/gotile/pkg/log"
)

func main() {
	logger := log.New()

	app := cli.NewApp()
	app.Name = "gotile"
	app.Usage = "tile-map renderer for small RGB565 displays"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log per-frame renderer diagnostics",
		},
	}
	app.Commands = []*cli.Command{
		bakeCommand(logger),
		renderCommand(logger),
		viewCommand(logger),
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err.Error())
	}
}
