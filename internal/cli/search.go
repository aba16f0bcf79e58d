package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/esp8266-setup/esp8266-setup/internal/catalog"
	"github.com/esp8266-setup/esp8266-setup/internal/ui"
)

var (
	searchSDKFilter     string
	searchLicenseFilter string
	searchJSON          bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog for library definitions",
	Long: `Search the library definitions of every catalog source.

The query matches against names, descriptions and URLs (case-insensitive
substring). Use --sdk to filter by SDK dependency and --license by license.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchSDKFilter, "sdk", "", "Filter by SDK dependencies (comma-separated, matches any)")
	searchCmd.Flags().StringVar(&searchLicenseFilter, "license", "", "Filter by license (e.g., MIT, BSD-2-Clause)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(searchCmd)
}

// searchEntry represents a catalog definition for display.
type searchEntry struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	Description     string   `json:"description"`
	License         string   `json:"license,omitempty"`
	SDKDependencies []string `json:"sdk_dependencies,omitempty"`
	URL             string   `json:"url"`
	Source          string   `json:"source"`
	Converted       bool     `json:"converted"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	cat := buildCatalog()
	found, errs := cat.List()
	for _, err := range errs {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Warning(err.Error()))
	}

	// Parse SDK filter into a list.
	var filterSDK []string
	if searchSDKFilter != "" {
		for _, s := range strings.Split(searchSDKFilter, ",") {
			kw := strings.TrimSpace(s)
			if kw != "" {
				filterSDK = append(filterSDK, strings.ToLower(kw))
			}
		}
	}

	var entries []searchEntry
	for _, e := range found {
		if !matchesSearch(e, query, filterSDK, searchLicenseFilter) {
			continue
		}
		entries = append(entries, searchEntry{
			Name:            e.Name,
			Version:         e.Definition.Version,
			Description:     e.Definition.Description,
			License:         e.Definition.License,
			SDKDependencies: e.Definition.SDKDependencies,
			URL:             e.Definition.URL,
			Source:          e.SourceName,
			Converted:       e.Definition.NeedsConversion(),
		})
	}

	if len(entries) == 0 {
		msg := "No libraries found"
		if query != "" {
			msg += fmt.Sprintf(" matching %q", query)
		}
		if searchSDKFilter != "" {
			msg += fmt.Sprintf(" with --sdk=%s", searchSDKFilter)
		}
		if searchLicenseFilter != "" {
			msg += fmt.Sprintf(" with --license=%s", searchLicenseFilter)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		if query != "" {
			if s := cat.Suggest(query); len(s) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Did you mean %s?\n", strings.Join(s, ", "))
			}
		}
		return nil
	}

	if searchJSON {
		return printSearchJSON(cmd, entries)
	}
	return printSearchTable(cmd, entries)
}

// matchesSearch returns true if the catalog entry matches all provided filters.
// All filters are AND-combined: the entry must match every non-empty filter.
func matchesSearch(e *catalog.Entry, query string, filterSDK []string, licenseFilter string) bool {
	def := e.Definition

	// Filter by SDK dependency (match any).
	if len(filterSDK) > 0 && !matchesAnySDK(def.SDKDependencies, filterSDK) {
		return false
	}

	// Filter by license (case-insensitive exact match).
	if licenseFilter != "" && !strings.EqualFold(def.License, licenseFilter) {
		return false
	}

	// Filter by query (substring match on name, description, or URL).
	if query != "" {
		q := strings.ToLower(query)
		if !strings.Contains(strings.ToLower(e.Name), q) &&
			!strings.Contains(strings.ToLower(def.Description), q) &&
			!strings.Contains(strings.ToLower(def.URL), q) {
			return false
		}
	}

	return true
}

// matchesAnySDK returns true if any of the entry's SDK dependencies match
// any of the filter keywords. Comparison is case-insensitive.
func matchesAnySDK(deps []string, filter []string) bool {
	for _, f := range filter {
		for _, d := range deps {
			if strings.EqualFold(d, f) {
				return true
			}
		}
	}
	return false
}

func printSearchTable(cmd *cobra.Command, entries []searchEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tTYPE\tDESCRIPTION")
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "-"
		}
		typ := "native"
		if e.Converted {
			typ = "imported"
		}
		desc := e.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, version, typ, desc)
	}
	return w.Flush()
}

func printSearchJSON(cmd *cobra.Command, entries []searchEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
