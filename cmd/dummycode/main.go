package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dummycoder/app"
	"dummycoder/domain/dummy"
	"dummycoder/internal/batch"
	"dummycoder/internal/config"
	"dummycoder/internal/container"
)

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dummycode",
		Short:         "Expand multi-response survey columns into 0/1 indicator columns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newEncodeCmd(),
		newColumnsCmd(),
		newBatchCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func loadContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func newEncodeCmd() *cobra.Command {
	var input, output, separator, conflict string
	var columns []string
	var dropOriginals bool

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Dummy-code columns of a CSV or XLSX file into a new workbook",
		Long: `Dummy-code the selected columns of a CSV or XLSX file.

Example: dummycode encode --in survey.csv --columns Hobby --columns Pets --sep ";" --out coded.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("sep") {
				separator = c.Config.Encoding.DefaultSeparator
			}
			var policy dummy.ConflictPolicy
			if conflict != "" {
				if policy, err = dummy.ParseConflictPolicy(conflict); err != nil {
					return err
				}
			}
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + "_dummy_coded.xlsx"
			}
			return runEncode(cmd, c.EncodeService, app.EncodeRequest{
				Filename:       input,
				Columns:        columns,
				Separator:      separator,
				KeepOriginals:  !dropOriginals,
				ConflictPolicy: policy,
			}, output)
		},
	}

	cmd.Flags().StringVar(&input, "in", "", "Input CSV or XLSX file")
	cmd.Flags().StringVar(&output, "out", "", "Output XLSX file (default <input>_dummy_coded.xlsx)")
	cmd.Flags().StringArrayVar(&columns, "columns", nil, "Column to dummy-code (repeatable)")
	cmd.Flags().StringVar(&separator, "sep", ",", "Separator between responses in a cell")
	cmd.Flags().BoolVar(&dropOriginals, "drop-originals", false, "Remove the original multi-response columns")
	cmd.Flags().StringVar(&conflict, "conflict", "", "Naming conflict policy: fail or suffix")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("columns")

	return cmd
}

func runEncode(cmd *cobra.Command, svc *app.EncodeService, req app.EncodeRequest, output string) error {
	f, err := os.Open(req.Filename)
	if err != nil {
		return err
	}
	defer f.Close()
	req.File = f

	outcome, err := svc.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, outcome.Workbook, 0644); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printUniverses(out, outcome.Universes)
	fmt.Fprintf(out, "Wrote %s (%d rows, %d columns)\n", output, outcome.RowCount, outcome.ColumnCount)
	return nil
}

func printUniverses(out io.Writer, universes []dummy.Universe) {
	for _, u := range universes {
		fmt.Fprintf(out, "Unique responses in %s: [%s]\n", u.Column, strings.Join(u.Values, ", "))
	}
}

func newColumnsCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the columns of a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer()
			if err != nil {
				return err
			}
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			inspection, err := c.EncodeService.Inspect(cmd.Context(), f, input)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range inspection.Columns {
				fmt.Fprintln(out, name)
			}
			fmt.Fprintf(out, "%d rows\n", inspection.RowCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "in", "", "Input CSV or XLSX file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [job.yaml]",
		Short: "Dummy-code several files described by a YAML job",
		Long: `Run a YAML job that lists input files and the columns to dummy-code.

Example job:

  concurrency: 2
  defaults:
    separator: ";"
    keep_originals: false
  jobs:
    - input: wave1.csv
      columns: [Hobby, Pets]
    - input: wave2.xlsx
      output: out/wave2_coded.xlsx
      columns: [Hobby]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer()
			if err != nil {
				return err
			}
			job, err := batch.LoadJob(args[0])
			if err != nil {
				return err
			}
			job.FallbackSeparator = c.Config.Encoding.DefaultSeparator
			results, err := batch.Run(cmd.Context(), c.EncodeService, job)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				fmt.Fprintf(out, "%s -> %s (%d rows)\n", res.Input, res.Output, res.RowCount)
				printUniverses(out, res.Universes)
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer()
			if err != nil {
				return err
			}
			if port == "" {
				port = c.Config.Server.Port
			}
			gin.SetMode(c.Config.Server.GinMode)

			server, err := c.NewServer()
			if err != nil {
				return err
			}
			return server.Start(":" + port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default $PORT or 8080)")
	return cmd
}
