package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/buying-list/internal/fetch"
	"github.com/donaldgifford/buying-list/pkg/logger"
)

func extractCommand() *cobra.Command {
	var (
		file      string
		url       string
		selectors []string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a price from a page without the server",
		Long: "Runs the extraction pipeline locally over a saved page (--file, or - for\n" +
			"stdin) or a fetched URL and prints the result as JSON. Nothing is stored.",
		Example: `  buying-list extract --file page.html --selector .price
  curl -s https://shop.example/p/1 | buying-list extract --file -
  buying-list extract --url https://shop.example/p/1 --selector "#price"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (url == "") {
				return errors.New("exactly one of --file or --url is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

			markup, err := readMarkup(cmd, file)
			if url != "" {
				markup, err = fetchMarkup(cmd, newFetcher(&cfg.Fetch, newRateLimiter(&cfg.Fetch)), url, cfg.Fetch.UserAgents)
			}
			if err != nil {
				return err
			}

			res := newPipeline(cfg, log).Extract(markup, selectors)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "saved page to read, - for stdin")
	cmd.Flags().StringVar(&url, "url", "", "page to fetch")
	cmd.Flags().StringArrayVar(&selectors, "selector", nil, "CSS selector tried before the common ones (repeatable)")

	return cmd
}

func readMarkup(cmd *cobra.Command, file string) (string, error) {
	if file == "" {
		return "", nil
	}
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file) //nolint:gosec // path from CLI flag
	}
	if err != nil {
		return "", fmt.Errorf("reading markup: %w", err)
	}
	return string(data), nil
}

func fetchMarkup(cmd *cobra.Command, f fetch.Fetcher, url string, agents []string) (string, error) {
	resp, err := f.Fetch(cmd.Context(), url, fetch.BrowserHeaders(agents))
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.Status != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d: %s", url, resp.Status, http.StatusText(resp.Status))
	}
	return resp.Body, nil
}
