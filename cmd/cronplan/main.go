package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

// 构建时通过 -ldflags 注入
var version = "dev"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cronplan: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "cronplan"
	app.HelpName = "cronplan"
	app.Usage = "validate cron expressions and list upcoming run times"
	app.UsageText = "cronplan <command> [arguments...]"
	app.Version = version
	app.Writer = out
	app.ErrWriter = errOut
	app.Commands = []cli.Command{
		checkCommand(out),
		nextCommand(out),
		fieldCommand(out),
		compareCommand(out),
		weekdaysCommand(out),
	}
	return app
}
