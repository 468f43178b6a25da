// Command edgezero-dev runs the demo application on a local net/http server.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

// Set by ldflags.
var (
	version = "dev"
	commit  = "none"
)

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config    string `kong:"short='c',type='path',help='Path to TOML config file.',env='EDGE_CONFIG'"`
	LogLevel  string `kong:"help='Log level: debug|info|warn|error (overrides config).'"`
	LogFormat string `kong:"help='Log format: text|json (overrides config).'"`

	Serve   ServeCmd         `kong:"cmd,default='withargs',help='Run the dev server.'"`
	Routes  RoutesCmd        `kong:"cmd,help='Print the route table.'"`
	Version kong.VersionFlag `kong:"help='Print version and exit.'"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("edgezero-dev"),
		kong.Description("Local development server for EdgeZero apps."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (%s)", version, commit)},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}
