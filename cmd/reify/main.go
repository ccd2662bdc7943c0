// Command reify checks, dumps and snapshots a reify.toml universe.
package main

import (
	"github.com/alecthomas/kong"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

type CLI struct {
	Globals

	Check   CheckCmd   `cmd:"" help:"Build the universe and run its declared checks."`
	Dump    DumpCmd    `cmd:"" help:"Print every registered descriptor."`
	Save    SaveCmd    `cmd:"" help:"Store a snapshot of the universe."`
	Load    LoadCmd    `cmd:"" help:"Restore a stored snapshot and print it."`
	List    ListCmd    `cmd:"" help:"List stored snapshots."`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored snapshot."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("reify"),
		kong.Description("Reified generic type descriptors: check and snapshot a universe."),
		kong.UsageOnError(),
	)
	commonlog.Configure(cli.Verbose, nil)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
