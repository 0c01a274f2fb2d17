package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digitalbiztech/bizsite"
	"github.com/digitalbiztech/bizsite/content"
)

var exportOut string

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and edit content collections",
	Long: `Collections: blogs, case-studies, services, products, careers, team,
clients and legal-docs. Edits are stored in the database and shadow the
bundled defaults until reset.`,
}

var contentListCmd = &cobra.Command{
	Use:   "list <kind>",
	Short: "Print the record keys and where the collection is read from",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *content.Store, kind content.Kind, args []string) error {
		keys, err := content.Keys(cmd.Context(), s, kind)
		if err != nil {
			return err
		}
		src, err := s.Source(cmd.Context(), kind)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t(%s, %d records)\n", kind.Label(), src, len(keys))
		for i, k := range keys {
			fmt.Fprintf(w, "%d\t%s\n", i+1, k)
		}
		return w.Flush()
	}),
}

var contentExportCmd = &cobra.Command{
	Use:   "export <kind>",
	Short: "Write a collection as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *content.Store, kind content.Kind, args []string) error {
		data, _, err := s.Raw(cmd.Context(), kind)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(exportOut, buf.Bytes(), 0o644); err != nil {
			return err
		}
		logger.Info("exported collection", zap.String("kind", string(kind)), zap.String("file", exportOut))
		return nil
	}),
}

var contentImportCmd = &cobra.Command{
	Use:   "import <kind> <file>",
	Short: "Validate a JSON file against the record type and save it",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(cmd *cobra.Command, s *content.Store, kind content.Kind, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		n, err := content.Import(cmd.Context(), s, kind, data, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s\n", n, kind.Label())
		return nil
	}),
}

var contentResetCmd = &cobra.Command{
	Use:   "reset <kind>",
	Short: "Delete the stored copy so the defaults are served again",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, s *content.Store, kind content.Kind, args []string) error {
		if err := s.Reset(cmd.Context(), kind); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s restored to defaults\n", kind.Label())
		return nil
	}),
}

func init() {
	contentExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")
	contentCmd.AddCommand(contentListCmd, contentExportCmd, contentImportCmd, contentResetCmd)
}

// openStore opens the configured database and a content store over it.
func openStore() (*content.Store, *sql.DB, error) {
	db, err := bizsite.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	kv, err := content.NewSQLiteKV(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	s := content.NewStore(kv, cfg.DefaultsFS(),
		content.WithLogger(logger.Named("content")),
		content.WithCacheTTL(0),
	)
	return s, db, nil
}

// withStore parses the kind in args[0] and runs fn with an open store.
func withStore(fn func(*cobra.Command, *content.Store, content.Kind, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		kind, err := content.ParseKind(args[0])
		if err != nil {
			return err
		}
		s, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cmd, s, kind, args)
	}
}
