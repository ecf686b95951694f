package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the trainer table over WebSocket"`
	Simulate SimulateCmd      `cmd:"" help:"Play hands headlessly with the basic-strategy advisor"`
	Verify   VerifyCmd        `cmd:"" help:"Verify a provably-fair shoe proof"`
	Rules    RulesCmd         `cmd:"" help:"Print the effective table rules"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjacktrainer"),
		kong.Description("Blackjack card-counting trainer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
