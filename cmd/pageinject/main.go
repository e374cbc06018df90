package main

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/pageinject/cmd/pageinject/commands"
	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

func main() {
	g := commands.NewGlobal()
	if err := commands.Execute(os.Args[1:], g); err != nil {
		ferrors.NewCLIErrorAdapter(g.Verbose, slog.Default()).HandleError(err)
	}
}
