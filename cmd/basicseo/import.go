package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/eringen/basicseo"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load content fixtures into the database",
	Long: `Load terms and entries from a YAML fixture file. The ids assigned to
each key are printed so front_page_id and shop_page_id can be configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := basicseo.ImportFixtures(cmd.Context(), store, f, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, key := range sortedKeys(res.Terms) {
		fmt.Fprintf(out, "term  %-24s %d\n", key, res.Terms[key])
	}
	for _, key := range sortedKeys(res.Entries) {
		fmt.Fprintf(out, "entry %-24s %d\n", key, res.Entries[key])
	}
	return nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
