package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/guidebuilder/cmd/guidebuilder/commands"
	"git.home.luguber.info/inful/guidebuilder/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("guidebuilder"),
		kong.Description("Builds tiered Markdown guide corpora into static HTML sites."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("guidebuilder %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}, &cli))
}
