package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/razeghi71/insight/schema"
	"github.com/razeghi71/insight/server"
)

func (a *app) addCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "add <id> <path|->",
		Short: "Add a dataset from a file, or a course archive on stdin",
		Long: "Add a dataset. The file format follows its extension: .zip course archive, " +
			".json course file, .jsonl, .csv, .avro or .parquet. With -, a zip archive " +
			"(raw or base64) is read from stdin.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer f.Close()

			id, path := args[0], args[1]
			var ids []string
			if path == "-" {
				var content []byte
				content, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("cannot read stdin: %w", err)
				}
				ids, err = f.AddDataset(ctx, id, schema.Kind(kind), content)
			} else {
				ids, err = f.AddDatasetFile(ctx, id, schema.Kind(kind), path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ids, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(schema.KindCourses), "dataset kind")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer f.Close()

			id, err := f.RemoveDataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer f.Close()

			infos := f.ListDatasets()
			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{info.ID, string(info.Kind), fmt.Sprint(info.NumRows)}
			}
			printTable(cmd.OutOrStdout(), []string{"id", "kind", "rows"}, rows)
			return nil
		},
	}
}

func (a *app) queryCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "query [file|-]",
		Short: "Run a JSON query document",
		Long:  "Run a query read from a file, or from stdin when the file is - or omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format %q (want table or json)", format)
			}

			var (
				doc []byte
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				doc, err = io.ReadAll(cmd.InOrStdin())
			} else {
				doc, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("cannot read query: %w", err)
			}

			f, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := f.RunQuery(cmd.Context(), doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(out, result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer f.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return server.New(f, nil).Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	return cmd
}
