package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dmitrymomot/edgezero/core/router"
	"github.com/dmitrymomot/edgezero/internal/demo"
)

// RoutesCmd prints the demo route table.
type RoutesCmd struct {
	JSON bool `kong:"help='Print routes as JSON.'"`
}

// Run prints the table to stdout.
func (c *RoutesCmd) Run() error {
	return writeRoutes(os.Stdout, demo.Hooks{}.Routes(), c.JSON)
}

func writeRoutes(w io.Writer, svc *router.Service, asJSON bool) error {
	routes := svc.Routes()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(routes)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\n", r.Method, r.Path)
	}
	return tw.Flush()
}
