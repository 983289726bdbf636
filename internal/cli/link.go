package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/7eVeNcO/semtk/pkg/errors"
	"github.com/7eVeNcO/semtk/pkg/linkedit"
	"github.com/7eVeNcO/semtk/pkg/nodegroup"
)

// linkCommand creates the link command.
func (c *CLI) linkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "List and edit the links of a document's graph",
	}
	cmd.AddCommand(c.linkListCommand())
	cmd.AddCommand(c.linkEditCommand())
	return cmd
}

// linkRows renders links as table rows.
func linkRows(g *nodegroup.NodeGroup, links []nodegroup.Link) [][]string {
	rows := make([][]string, len(links))
	for i, l := range links {
		rows[i] = []string{l.Source.SparqlID, l.Item.KeyName, l.Target.SparqlID, g.LinkOptional(l).String()}
	}
	return rows
}

// linkListCommand creates the "link list" subcommand.
func (c *CLI) linkListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list FILE",
		Short: "List the links of a document's graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			p, err := decodeParts(doc, nil)
			if err != nil {
				return err
			}
			if p.graph == nil {
				printInfo("Document has no graph")
				return nil
			}
			links := p.graph.Links()
			if len(links) == 0 {
				printInfo("Graph has no links")
				return nil
			}
			for _, row := range linkRows(p.graph, links) {
				fmt.Printf("%s %s %s  %s\n",
					StyleValue.Render(row[0]),
					StyleHighlight.Render("-"+row[1]+"->"),
					StyleValue.Render(row[2]),
					StyleDim.Render(row[3]))
			}
			return nil
		},
	}
}

// linkEditCommand creates the "link edit" subcommand.
func (c *CLI) linkEditCommand() *cobra.Command {
	var source, item, target, output string
	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Change the optional mode of a link, or delete it",
		Long: `Open the link editor on one link of a document's graph.

The link is chosen with --source, --item and --target, or interactively when
they are omitted. The edited document keeps its density and is written back
to FILE unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			p, err := decodeParts(doc, nil)
			if err != nil {
				return err
			}
			if p.graph == nil {
				return errors.New(errors.ErrCodeInvalidDocument, "%s has no graph", args[0])
			}

			var link nodegroup.Link
			if source != "" || item != "" || target != "" {
				var ok bool
				if link, ok = p.graph.FindLink(source, item, target); !ok {
					return errors.New(errors.ErrCodeLinkNotFound, "no link %s -%s-> %s", source, item, target)
				}
			} else {
				links := p.graph.Links()
				if len(links) == 0 {
					printInfo("Graph has no links")
					return nil
				}
				i, ok, err := pick("Select Link", []string{"Source", "Item", "Target", "Optional"}, linkRows(p.graph, links))
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Cancelled")
					return nil
				}
				link = links[i]
			}

			edit, err := editLink(linkedit.New(link, p.graph, nil))
			if err != nil {
				return err
			}
			if edit == nil {
				printInfo("Cancelled")
				return nil
			}
			if err := edit.Apply(p.graph); err != nil {
				return err
			}
			if edit.Delete {
				logger.Info("Deleted link", "link", link.String())
			} else {
				logger.Info("Set optional mode", "link", link.String(), "mode", edit.Mode)
			}

			out, err := p.build(p.deflated)
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			return writeDocument(out, output)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source node SPARQL id (e.g. ?Battery)")
	cmd.Flags().StringVar(&item, "item", "", "link item key name")
	cmd.Flags().StringVar(&target, "target", "", "target node SPARQL id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite FILE)")
	return cmd
}
