package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/coldfinder/internal/cli"
	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/pkg/utils"
)

type searchOptions struct {
	crop      string
	quantity  string
	location  string
	local     bool
	jsonOut   bool
	lang      string
	serverURL string
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [crop]",
		Short: "Find facilities for a crop",
		Long: "Searches the remote facility service when one is configured and falls back to\n" +
			"the local catalog. Results list available facilities first, cheapest first.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && opts.crop == "" {
				opts.crop = args[0]
			}
			return runSearch(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.crop, "crop", "", "crop to store")
	cmd.Flags().StringVarP(&opts.quantity, "quantity", "q", "", "quantity to store, e.g. 500kg (informational)")
	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "area name filter")
	cmd.Flags().BoolVar(&opts.local, "local", false, "skip the remote service and search the catalog only")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output JSON")
	cmd.Flags().StringVar(&opts.lang, "lang", models.DefaultLocale, "facility name locale (en, ta)")
	cmd.Flags().StringVar(&opts.serverURL, "server", "", "query a running coldfinder server instead (e.g. http://localhost:8080)")
	return cmd
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions) error {
	query := &models.Query{Crop: opts.crop, Quantity: opts.quantity, Location: opts.location}
	if query.IsBlank() {
		return fmt.Errorf("a crop is required (use --crop or a positional argument)")
	}
	format := cli.OutputText
	if opts.jsonOut {
		format = cli.OutputJSON
	}

	var result *models.RankedResult
	if opts.serverURL != "" {
		var err error
		result, err = searchViaHTTP(cmd.Context(), opts.serverURL, query, opts.local)
		if err != nil {
			return err
		}
	} else {
		components, _, err := setup(cmd.Context(), root)
		if err != nil {
			return err
		}
		defer components.Close()
		if opts.local {
			result = components.Engine.SearchLocal(query)
		} else {
			result = components.Engine.Search(cmd.Context(), query)
		}
	}
	return cli.WriteSearchResults(cmd.OutOrStdout(), result, format, opts.lang)
}

func searchViaHTTP(ctx context.Context, serverURL string, query *models.Query, local bool) (*models.RankedResult, error) {
	endpoint, err := url.JoinPath(strings.TrimSuffix(serverURL, "/"), "/api/v1/search")
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if local {
		endpoint += "?local=true"
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, utils.Truncate(strings.TrimSpace(string(b)), 200))
	}
	var result models.RankedResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Facilities == nil {
		result.Facilities = []*models.Facility{}
	}
	return &result, nil
}
