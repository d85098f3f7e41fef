package testutil

// ConstantOpID hands out the same operation id for every engine operation,
// so captured log output is byte-identical across runs.
//
// It satisfies engine.OpIDGenerator. Unlike engine.FixedGenerator it never
// runs out, which suits scenarios whose operation count is not known ahead.
type ConstantOpID struct {
	id string
}

// NewConstantOpID returns a generator for id. An empty id becomes
// "op-default".
func NewConstantOpID(id string) ConstantOpID {
	if id == "" {
		id = "op-default"
	}
	return ConstantOpID{id: id}
}

// Generate returns the constant id.
func (g ConstantOpID) Generate() string {
	return g.id
}
