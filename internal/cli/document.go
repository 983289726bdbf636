package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/7eVeNcO/semtk/pkg/conn"
	"github.com/7eVeNcO/semtk/pkg/document"
	"github.com/7eVeNcO/semtk/pkg/importspec"
	"github.com/7eVeNcO/semtk/pkg/nodegroup"
	"github.com/7eVeNcO/semtk/pkg/ontology"
)

// parts is a document decoded into live collaborators. Absent fields are nil.
type parts struct {
	conn     *conn.Connection
	graph    *nodegroup.NodeGroup
	mapping  *importspec.Table
	deflated bool
}

// decodeParts loads every field of doc, inflating the graph with oinfo.
func decodeParts(doc *document.Document, oinfo *ontology.Info) (*parts, error) {
	p := &parts{}
	if doc.HasConnection() {
		c, err := doc.Connection()
		if err != nil {
			return nil, err
		}
		p.conn = c
	}

	ng := nodegroup.New()
	ok, err := doc.Graph(ng, oinfo)
	if err != nil {
		return nil, err
	}
	if ok {
		p.graph = ng
		p.deflated = graphDeflated(doc.Payload().Graph)
	}

	if raw, ok := doc.MappingJSON(); ok {
		tbl, err := importspec.FromPayload(raw)
		if err != nil {
			return nil, err
		}
		p.mapping = tbl
	}
	return p, nil
}

// graphDeflated reads the density flag of a graph payload.
func graphDeflated(raw json.RawMessage) bool {
	var head struct {
		Deflated bool `json:"deflated"`
	}
	_ = json.Unmarshal(raw, &head)
	return head.Deflated
}

// build encodes p at the given density.
func (p *parts) build(deflate bool) (*document.Document, error) {
	opts := []document.Option{document.WithDeflate(deflate)}
	if p.conn != nil {
		opts = append(opts, document.WithConnection(p.conn))
	}
	if p.graph != nil {
		opts = append(opts, document.WithGraph(p.graph))
	}
	if p.mapping != nil {
		opts = append(opts, document.WithMapping(p.mapping))
	}
	return document.New(opts...)
}

// docCommand creates the doc command.
func (c *CLI) docCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Build and inspect graph-query documents",
	}
	cmd.AddCommand(c.docBuildCommand())
	cmd.AddCommand(c.docShowCommand())
	cmd.AddCommand(c.docDeflateCommand())
	cmd.AddCommand(c.docInflateCommand())
	return cmd
}

// docBuildCommand creates the "doc build" subcommand.
func (c *CLI) docBuildCommand() *cobra.Command {
	var (
		connPath, graphPath, mappingPath, output string
		deflate                                  bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle a connection, node group and import spec into a document",
		Long: `Build a document from up to three JSON files. Any of them may be omitted.

With --deflate the node group keeps only the properties mapped by the import
spec, plus the links between nodes.`,
		Example: `  semtk doc build --conn conn.json --graph nodegroup.json --mapping spec.json --deflate -o query.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			p := &parts{}

			if connPath != "" {
				data, err := os.ReadFile(connPath)
				if err != nil {
					return fmt.Errorf("read connection: %w", err)
				}
				if p.conn, err = conn.FromPayload(data); err != nil {
					return err
				}
				if err := p.conn.Validate(); err != nil {
					return err
				}
				logger.Debug("Loaded connection", "name", p.conn.Name)
			}
			if graphPath != "" {
				data, err := os.ReadFile(graphPath)
				if err != nil {
					return fmt.Errorf("read node group: %w", err)
				}
				p.graph = nodegroup.New()
				if err := p.graph.AddFromPayload(data, nil); err != nil {
					return err
				}
				logger.Debug("Loaded node group", "nodes", p.graph.NodeCount())
			}
			if mappingPath != "" {
				data, err := os.ReadFile(mappingPath)
				if err != nil {
					return fmt.Errorf("read import spec: %w", err)
				}
				tbl, err := importspec.FromPayload(data)
				if err != nil {
					return err
				}
				if err := tbl.Validate(); err != nil {
					return err
				}
				p.mapping = tbl
				logger.Debug("Loaded import spec", "mapped", len(p.mapping.MappedElements()))
			}
			if deflate && p.graph != nil && p.mapping == nil {
				logger.Warn("Deflating without an import spec drops every property")
			}

			doc, err := p.build(deflate)
			if err != nil {
				return err
			}
			prog.done("Built document")
			return writeDocument(doc, output)
		},
	}
	cmd.Flags().StringVar(&connPath, "conn", "", "connection JSON file")
	cmd.Flags().StringVar(&graphPath, "graph", "", "node group JSON file")
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "import spec JSON file")
	cmd.Flags().BoolVar(&deflate, "deflate", false, "encode only the mapped part of the node group")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// docShowCommand creates the "doc show" subcommand.
func (c *CLI) docShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Summarize a document",
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

			fmt.Println(StyleTitle.Render(args[0]))
			if p.conn != nil {
				printKeyValue("connection", p.conn.Name)
				for _, e := range p.conn.Model {
					printDetail("model  %s %s %s", e.Type, e.URL, e.Dataset)
				}
				for _, e := range p.conn.Data {
					printDetail("data   %s %s %s", e.Type, e.URL, e.Dataset)
				}
			} else {
				printKeyValue("connection", StyleDim.Render("none"))
			}

			if p.graph != nil {
				density := "full"
				if p.deflated {
					density = "deflated"
				}
				printKeyValue("graph", fmt.Sprintf("%d nodes · %d links · %d properties · %s",
					p.graph.NodeCount(), len(p.graph.Links()), p.graph.PropCount(), density))
			} else {
				printKeyValue("graph", StyleDim.Render("none"))
			}

			if p.mapping != nil {
				printKeyValue("mapping", strconv.Itoa(len(p.mapping.MappedElements()))+" mapped properties")
				for _, ref := range p.mapping.MappedElements() {
					printDetail("%s", ref)
				}
			} else {
				printKeyValue("mapping", StyleDim.Render("none"))
			}
			return nil
		},
	}
}

// docDeflateCommand creates the "doc deflate" subcommand.
func (c *CLI) docDeflateCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "deflate FILE",
		Short: "Rewrite a document with only the mapped part of its graph",
		Args:  cobra.ExactArgs(1),
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
				logger.Warn("Document has no graph", "file", args[0])
			} else if p.mapping == nil {
				logger.Warn("Document has no import spec, every property will be dropped")
			}

			before := len(doc.Payload().Graph)
			out, err := p.build(true)
			if err != nil {
				return err
			}
			logger.Info("Deflated graph", "bytes_before", before, "bytes_after", len(out.Payload().Graph))
			return writeDocument(out, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// docInflateCommand creates the "doc inflate" subcommand.
func (c *CLI) docInflateCommand() *cobra.Command {
	var output, oinfoPath string
	cmd := &cobra.Command{
		Use:   "inflate FILE",
		Short: "Restore the full graph of a deflated document from ontology info",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			oinfo, err := ontology.LoadFile(oinfoPath)
			if err != nil {
				return err
			}
			logger.Debug("Loaded ontology", "classes", len(oinfo.ClassURIs()))

			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			p, err := decodeParts(doc, oinfo)
			if err != nil {
				return err
			}
			if p.graph == nil {
				logger.Warn("Document has no graph", "file", args[0])
			} else {
				logger.Info("Inflated graph", "nodes", p.graph.NodeCount(), "properties", p.graph.PropCount())
			}

			out, err := p.build(false)
			if err != nil {
				return err
			}
			return writeDocument(out, output)
		},
	}
	cmd.Flags().StringVar(&oinfoPath, "oinfo", "", "ontology YAML file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("oinfo")
	return cmd
}
