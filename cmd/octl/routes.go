package main

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opencollective/frontend/internal/routes"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the asset and page route tables in match order",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tNAME\tPATTERN")
		for _, e := range routes.Assets().Entries() {
			fmt.Fprintf(w, "asset\t%s\t%s\n", e.Name, e.Pattern)
		}
		for _, e := range routes.Pages().Entries() {
			fmt.Fprintf(w, "page\t%s\t%s\n", e.Name, e.Pattern)
		}
		return w.Flush()
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Show which route a path resolves to and its params",
	Long: `Resolve a path (with an optional query string) the way the server does:
against the asset table first, then the page table.`,
	Example: `  octl resolve "/webpack/donate/10/monthly?description=thanks"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, table, err := resolve(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s)\n", table, m.Name, m.Pattern)

		params := m.Params()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s = %q\n", k, params[k])
		}
		return nil
	},
}

func resolve(path string) (routes.Match, string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(path)
	if err != nil {
		return routes.Match{}, "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	if m, err := routes.Assets().ResolveURL(u); err == nil {
		return m, "asset", nil
	}
	m, err := routes.Pages().ResolveURL(u)
	if err != nil {
		return routes.Match{}, "", err
	}
	return m, "page", nil
}
