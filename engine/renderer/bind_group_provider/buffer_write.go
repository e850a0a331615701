package bind_group_provider

// BufferWrite describes one queued upload into the buffer at a provider's binding.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Marshaler is implemented by the GPU uniform types.
type Marshaler interface {
	Marshal() []byte
}

// NewBufferWrite builds a write of a uniform value at offset zero.
//
// Parameters:
//   - p: the provider holding the buffer
//   - binding: the binding index
//   - m: the value to upload
//
// Returns:
//   - BufferWrite: the write
func NewBufferWrite(p BindGroupProvider, binding int, m Marshaler) BufferWrite {
	return BufferWrite{Provider: p, Binding: binding, Data: m.Marshal()}
}
