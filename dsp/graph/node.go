package graph

// Kind identifies a node type in graph descriptions.
type Kind string

const (
	KindMediaSource  Kind = "media-source"
	KindGain         Kind = "gain"
	KindBiquad       Kind = "biquad"
	KindCompressor   Kind = "compressor"
	KindDelay        Kind = "delay"
	KindConvolver    Kind = "convolver"
	KindStereoPanner Kind = "stereo-panner"
	KindAnalyser     Kind = "analyser"
)

// Node is one processing unit of the graph.
//
// Process receives the sum of all inputs for the current quantum and must
// write exactly in.Len() frames into out. The two buses never alias.
type Node interface {
	ID() string
	Kind() Kind
	Process(in, out Bus)
}

// Parameterized is implemented by nodes that expose parameters for
// descriptions and generic tooling.
type Parameterized interface {
	Params() []*Param
}

// cycleBreaker is implemented by nodes that may sit on a cycle. Its output for
// a quantum is produced before its input for that quantum is known.
type cycleBreaker interface {
	Node
	read(out Bus)
	write(in Bus)
}

type base struct {
	id string
}

func (b base) ID() string { return b.id }
