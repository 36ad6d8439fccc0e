package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/squarenet/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Len returns the number of modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// String lists the contained modules.
func (s *Sequential) String() string {
	var b strings.Builder
	b.WriteString("Sequential(\n")
	for i, m := range s.modules {
		name := fmt.Sprintf("%T", m)
		if str, ok := m.(fmt.Stringer); ok {
			name = str.String()
		}
		fmt.Fprintf(&b, "  (%d): %s\n", i, name)
	}
	b.WriteString(")")
	return b.String()
}
