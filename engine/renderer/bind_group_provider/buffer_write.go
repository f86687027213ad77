package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Fits reports whether the write stays inside the binding's recorded size.
// Writes to a binding without a recorded size are accepted.
//
// Returns:
//   - bool: true if Offset+len(Data) does not exceed the binding size
func (w BufferWrite) Fits() bool {
	if w.Provider == nil {
		return false
	}
	size := w.Provider.BufferSize(w.Binding)
	return size == 0 || w.Offset+uint64(len(w.Data)) <= size
}
