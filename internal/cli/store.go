package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/7eVeNcO/semtk/pkg/store"
)

// storeCommand creates the store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save and load documents by id",
		Long: `Save and load documents in the configured store.

The backend is chosen in config.toml:

  [store]
  backend = "sqlite"   # file, sqlite, redis or mongo
  path = "~/.local/share/semtk/semtk.db"`,
	}
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	return cmd
}

// storePutCommand creates the "store put" subcommand.
func (c *CLI) storePutCommand() *cobra.Command {
	var name, comments, creator string
	cmd := &cobra.Command{
		Use:   "put FILE",
		Short: "Save a document and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			rec, err := store.NewRecord(name, doc)
			if err != nil {
				return err
			}
			rec.Comments = comments
			rec.Creator = creator

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Put(ctx, rec); err != nil {
				return err
			}
			logger.Debug("Stored record", "id", rec.ID, "bytes", len(rec.Data), "hash", rec.Hash[:12])
			printSuccess("Stored %s", StyleValue.Render(rec.Name))
			printKeyValue("id", rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "record name (default: file name)")
	cmd.Flags().StringVar(&comments, "comments", "", "free-form comments")
	cmd.Flags().StringVar(&creator, "creator", "", "record creator")
	return cmd
}

// storeGetCommand creates the "store get" subcommand.
func (c *CLI) storeGetCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get [ID]",
		Short: "Load a document by id",
		Long:  `Load a document by id. Without an id, pick one from the stored records.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				recs, err := st.List(ctx)
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					printInfo("Store is empty")
					return nil
				}
				i, ok, err := pick("Select Document", recordHeaders, recordRows(recs))
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Cancelled")
					return nil
				}
				id = recs[i].ID
			}

			rec, err := st.Get(ctx, id)
			if err != nil {
				return err
			}
			if err := rec.Verify(); err != nil {
				logger.Debug("Verify failed", "err", err)
				printWarning("Stored document %s does not match its hash", rec.ID)
			}
			doc, err := rec.Document()
			if err != nil {
				return err
			}
			return writeDocument(doc, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

var recordHeaders = []string{"ID", "Name", "Creator", "Created"}

// recordRows renders records as table rows.
func recordRows(recs []store.Record) [][]string {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{r.ID, r.Name, r.Creator, r.CreatedAt.Local().Format(time.DateTime)}
	}
	return rows
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			recs, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("Store is empty")
				return nil
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers(recordHeaders...).
				Rows(recordRows(recs)...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					if col == 0 {
						return StyleDim
					}
					return StyleValue
				})
			fmt.Println(t.Render())
			printDetail("%d documents", len(recs))
			return nil
		},
	}
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
