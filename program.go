package birnnclf

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// programKey identifies one compiled graph. gorgonia graphs are static, so
// every distinct batch shape gets its own.
type programKey struct {
	batch, seqLen int
	train         bool
}

// program is a compiled forward (and, for training, backward) graph bound to
// the shared parameter tensors.
type program struct {
	key    programKey
	vocab  int
	nOut   int
	g      *gorgonia.ExprGraph
	params *paramNodes

	fwIn, bwIn []*gorgonia.Node
	labels     *gorgonia.Node

	logits, alphas, loss *gorgonia.Node

	machine gorgonia.VM
}

func compile(cfg Config, p *Params, key programKey) (*program, error) {
	g := gorgonia.NewGraph()
	pr := &program{
		key:    key,
		vocab:  cfg.VocabSize,
		nOut:   cfg.NOut,
		g:      g,
		params: bindParams(g, p),
		fwIn:   make([]*gorgonia.Node, key.seqLen),
		bwIn:   make([]*gorgonia.Node, key.seqLen),
	}
	for t := 0; t < key.seqLen; t++ {
		pr.fwIn[t] = pr.input(fmt.Sprintf("fw_x%d", t), key.batch, cfg.VocabSize)
		pr.bwIn[t] = pr.input(fmt.Sprintf("bw_x%d", t), key.batch, cfg.VocabSize)
	}

	enc := &encoder{cellSize: cfg.CellSize}
	if key.train {
		enc.dropout = cfg.Dropout
	}
	out, err := enc.bidirectional(pr.params, pr.fwIn, pr.bwIn)
	if err != nil {
		return nil, err
	}
	pooled, alphas, err := attend(out, pr.params.attnW, pr.params.attnB)
	if err != nil {
		return nil, err
	}
	if pr.logits, err = classify(pooled, pr.params.headW, pr.params.headB); err != nil {
		return nil, err
	}
	pr.alphas = alphas

	if !key.train {
		pr.machine = gorgonia.NewTapeMachine(g)
		return pr, nil
	}

	pr.labels = pr.input("labels", key.batch, cfg.NOut)
	if pr.loss, err = crossEntropy(pr.logits, pr.labels); err != nil {
		return nil, err
	}
	if _, err = gorgonia.Grad(pr.loss, pr.params.all...); err != nil {
		return nil, errors.Wrap(err, "symbolic gradient")
	}
	pr.machine = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(pr.params.all...))
	return pr, nil
}

func (pr *program) input(name string, rows, cols int) *gorgonia.Node {
	return gorgonia.NewMatrix(pr.g, tensor.Float32,
		gorgonia.WithShape(rows, cols),
		gorgonia.WithName(name),
		gorgonia.WithValue(tensor.New(tensor.WithShape(rows, cols), tensor.Of(tensor.Float32))))
}

// bind points every parameter node at the bundle's tensors.
func (pr *program) bind(p *Params) error {
	for i, nt := range p.Tensors() {
		if err := gorgonia.Let(pr.params.all[i], nt.Tensor); err != nil {
			return errors.Wrapf(err, "bind %s", nt.Name)
		}
	}
	return nil
}

// sync copies optimizer results back into the bundle when a node holds its
// own copy of the value.
func (pr *program) sync(p *Params) {
	for i, nt := range p.Tensors() {
		v, ok := pr.params.all[i].Value().(*tensor.Dense)
		if !ok || v == nt.Tensor {
			continue
		}
		copy(nt.Tensor.Data().([]float32), v.Data().([]float32))
	}
}

// feed loads one batch. The backward direction receives the batch reversed
// along the time axis. labels may be nil for inference programs.
func (pr *program) feed(X [][]int, labels []int) error {
	if len(X) != pr.key.batch {
		return shapef("batch of %d examples fed to a program compiled for %d", len(X), pr.key.batch)
	}
	tokens := tokenTensor(X)
	reversed, err := Reverse(tokens, 1)
	if err != nil {
		return err
	}
	for t := 0; t < pr.key.seqLen; t++ {
		if err := gorgonia.Let(pr.fwIn[t], oneHotColumn(tokens, t, pr.vocab)); err != nil {
			return errors.Wrap(err, "feed forward inputs")
		}
		if err := gorgonia.Let(pr.bwIn[t], oneHotColumn(reversed, t, pr.vocab)); err != nil {
			return errors.Wrap(err, "feed backward inputs")
		}
	}
	if pr.labels == nil || labels == nil {
		return nil
	}
	if err := gorgonia.Let(pr.labels, oneHot(labels, pr.nOut)); err != nil {
		return errors.Wrap(err, "feed labels")
	}
	return nil
}

// run clears the previous pass, including accumulated gradients, and executes
// the tape. For training programs this is forward, loss and backward at once.
func (pr *program) run() error {
	pr.machine.Reset()
	if err := pr.machine.RunAll(); err != nil {
		return errors.Wrap(err, "run graph")
	}
	return nil
}

func (pr *program) lossValue() (float32, error) {
	l, ok := pr.loss.Value().Data().(float32)
	if !ok {
		return 0, errors.Errorf("loss is %T, want float32", pr.loss.Value().Data())
	}
	if math32.IsNaN(l) || math32.IsInf(l, 0) {
		return 0, errors.Wrapf(ErrNumericalInstability, "loss is %v", l)
	}
	return l, nil
}

// logitsValue copies the logits out of the machine's buffers.
func (pr *program) logitsValue() (*tensor.Dense, error) {
	data, err := finiteCopy(pr.logits, "logits")
	if err != nil {
		return nil, err
	}
	return tensor.New(tensor.WithShape(pr.key.batch, pr.nOut), tensor.WithBacking(data)), nil
}

func (pr *program) alphasValue() ([][]float32, error) {
	data, err := finiteCopy(pr.alphas, "attention weights")
	if err != nil {
		return nil, err
	}
	out := make([][]float32, pr.key.batch)
	for b := range out {
		out[b] = data[b*pr.key.seqLen : (b+1)*pr.key.seqLen]
	}
	return out, nil
}

func (pr *program) close() error {
	return pr.machine.Close()
}

func finiteCopy(n *gorgonia.Node, what string) ([]float32, error) {
	src, ok := n.Value().Data().([]float32)
	if !ok {
		return nil, errors.Errorf("%s hold %T, want []float32", what, n.Value().Data())
	}
	out := make([]float32, len(src))
	for i, v := range src {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrNumericalInstability, "%s[%d] is %v", what, i, v)
		}
		out[i] = v
	}
	return out, nil
}

func tokenTensor(X [][]int) *tensor.Dense {
	seq := len(X[0])
	data := make([]int, 0, len(X)*seq)
	for _, row := range X {
		data = append(data, row...)
	}
	return tensor.New(tensor.WithShape(len(X), seq), tensor.WithBacking(data))
}

// oneHotColumn encodes timestep t of a (B, T) token tensor as (B, vocab).
func oneHotColumn(tokens *tensor.Dense, t, vocab int) *tensor.Dense {
	shp := tokens.Shape()
	data := tokens.Data().([]int)
	out := make([]float32, shp[0]*vocab)
	for b := 0; b < shp[0]; b++ {
		out[b*vocab+data[b*shp[1]+t]] = 1
	}
	return tensor.New(tensor.WithShape(shp[0], vocab), tensor.WithBacking(out))
}

func oneHot(labels []int, classes int) *tensor.Dense {
	out := make([]float32, len(labels)*classes)
	for i, l := range labels {
		out[i*classes+l] = 1
	}
	return tensor.New(tensor.WithShape(len(labels), classes), tensor.WithBacking(out))
}
