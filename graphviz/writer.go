package graphviz

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/jt05610/dpn"
)

// Writer renders an annotated net: places as circles showing their initial
// tokens, transitions as boxes showing label, weight and duration.
type Writer struct {
	*Config
	g      *cgraph.Graph
	places map[string]*cgraph.Node
	trans  map[string]*cgraph.Node
}

func (w *Writer) writePlace(net *dpn.Net, i int, p *dpn.Place) error {
	node, err := w.g.CreateNode(fmt.Sprintf("p%d", i))
	if err != nil {
		return err
	}
	label := p.String()
	if n := net.Initial[p.ID]; n > 0 {
		label += "\n" + strings.Repeat("•", min(n, 5))
		if n > 5 {
			label += fmt.Sprintf(" %d", n)
		}
	}
	node.SetShape(cgraph.CircleShape)
	node.SetLabel(label)
	node.Set("fontname", string(w.Font))
	if _, final := net.Final[p.ID]; final {
		node.SetPeripheries(2)
	}
	w.places[p.ID] = node
	return nil
}

func (w *Writer) writeTransition(net *dpn.Net, i int, t *dpn.Transition) error {
	node, err := w.g.CreateNode(fmt.Sprintf("t%d", i))
	if err != nil {
		return err
	}
	label := fmt.Sprintf("%s\np=%g", net.Label(i), net.Weight(i))
	if d, ok := net.Duration(i); ok {
		label += "\nt∈" + d.String()
	}
	if t.Guard != "" {
		label += "\n[" + t.Guard + "]"
	}
	node.SetShape(cgraph.BoxShape)
	node.SetLabel(label)
	node.Set("fontname", string(w.Font))
	w.trans[t.ID] = node
	return nil
}

func (w *Writer) node(id string) *cgraph.Node {
	if n, ok := w.places[id]; ok {
		return n
	}
	return w.trans[id]
}

func (w *Writer) writeArc(i int, a *dpn.Arc) error {
	e, err := w.g.CreateEdge(fmt.Sprintf("a%d", i), w.node(a.Src), w.node(a.Dest))
	if err != nil {
		return err
	}
	if m := a.Multiplicity(); m > 1 {
		e.SetLabel(fmt.Sprintf("%d", m))
	}
	return nil
}

func (w *Writer) Flush(out io.Writer, net *dpn.Net) error {
	graph := graphviz.New()
	defer func() {
		_ = graph.Close()
	}()
	g, err := graph.Graph()
	if err != nil {
		return err
	}
	defer func() {
		_ = g.Close()
	}()
	g.SetRankDir(cgraph.RankDir(w.RankDir))
	w.g = g
	w.places = make(map[string]*cgraph.Node, len(net.Places))
	w.trans = make(map[string]*cgraph.Node, len(net.Transitions))
	for i, p := range net.Places {
		if err := w.writePlace(net, i, p); err != nil {
			return err
		}
	}
	for i, t := range net.Transitions {
		if err := w.writeTransition(net, i, t); err != nil {
			return err
		}
	}
	for i, a := range net.Arcs {
		if err := w.writeArc(i, a); err != nil {
			return err
		}
	}
	return graph.Render(w.g, w.Format, out)
}

type Font string

const (
	Helvetica Font = "Helvetica"
	Arial     Font = "Arial"
	SansSerif Font = "sans-serif"
	Times     Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	TopToBottom RankDir = "TB"
)

type Config struct {
	Name string
	Font
	RankDir
	Format graphviz.Format
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "dpn"
	}
	if config.Font == "" {
		config.Font = Helvetica
	}
	if config.RankDir == "" {
		config.RankDir = LeftToRight
	}
	if config.Format == "" {
		config.Format = graphviz.XDOT
	}
	return &Writer{
		Config: config,
	}
}
