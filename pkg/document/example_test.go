package document_test

import (
	"fmt"

	"github.com/7eVeNcO/semtk/pkg/conn"
	"github.com/7eVeNcO/semtk/pkg/document"
	"github.com/7eVeNcO/semtk/pkg/importspec"
	"github.com/7eVeNcO/semtk/pkg/nodegroup"
)

func ExampleNew_deflated() {
	const ns = "http://kdl.ge.com/batterydemo#"

	// A cell with two properties, only one of which is mapped.
	ng := nodegroup.New()
	cell := nodegroup.NewNode("?Cell", ns+"Cell").
		AddProp(&nodegroup.PropertyItem{KeyName: "color", ValueType: "string", URIRelation: ns + "color"}).
		AddProp(&nodegroup.PropertyItem{KeyName: "id", ValueType: "int", URIRelation: ns + "id"})
	_ = ng.AddNode(cell)

	table := importspec.NewTable("").AddColumn("col_0", "cell_color")
	table.Map("?Cell", ns+"color", importspec.Column("col_0"))

	doc, _ := document.New(
		document.WithConnection(conn.New("battery demo")),
		document.WithGraph(ng),
		document.WithMapping(table),
		document.Deflated(),
	)

	loaded := nodegroup.New()
	ok, _ := doc.Graph(loaded, nil)
	fmt.Println("Has graph:", ok)
	fmt.Println("Properties:", loaded.PropCount())
	fmt.Println("Connection:", loaded.Connection().Name)
	// Output:
	// Has graph: true
	// Properties: 1
	// Connection: battery demo
}

func ExampleParse() {
	doc, _ := document.Parse([]byte(`{"connection": {"name": "demo"}, "graph": null}`))

	fmt.Println("Connection:", doc.HasConnection())
	fmt.Println("Graph:", doc.HasGraph())
	fmt.Println("Mapping:", doc.HasMapping())
	// Output:
	// Connection: true
	// Graph: false
	// Mapping: false
}
