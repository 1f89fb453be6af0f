package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/basicseo"
	"github.com/eringen/basicseo/sitemap"
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap [path]",
	Short: "Print a sitemap document",
	Long: `Run the sitemap dispatcher for a request path (default /sitemap.xml)
and print the status line followed by the body.

Examples:
  basicseo sitemap
  basicseo sitemap /sitemap-post-type-page.xml
  basicseo sitemap /sitemap-taxonomy-category.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSitemap,
}

func init() {
	rootCmd.AddCommand(sitemapCmd)
}

func runSitemap(cmd *cobra.Command, args []string) error {
	path := sitemap.IndexPath
	if len(args) == 1 {
		path = args[0]
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	host := basicseo.NewHost(store, &cfg, logger)
	resp := basicseo.NewSitemaps(host, cfg, logger, nil).Dispatch(cmd.Context(), path)
	out := cmd.OutOrStdout()
	if !resp.Handled {
		return fmt.Errorf("%s is not a sitemap URL", path)
	}
	fmt.Fprintf(out, "%d %s\n", resp.Status, resp.ContentType)
	if resp.Location != "" {
		fmt.Fprintf(out, "Location: %s\n", resp.Location)
		return nil
	}
	fmt.Fprintln(out)
	if err := resp.Body.Render(cmd.Context(), out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}
