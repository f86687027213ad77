package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo pairs a vertex attribute format with its packed byte size.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// typeLayout is the host-shareable size and alignment of a WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// field is one member of a parsed WGSL struct.
type field struct {
	name     string
	typeName string
	location int // -1 when the member has no @location
	builtin  bool
}

// structDecl is a parsed WGSL struct declaration.
type structDecl struct {
	name   string
	fields []field
}

// resourceDecl is a parsed @group/@binding variable declaration.
type resourceDecl struct {
	group        int
	binding      int
	addressSpace string
	name         string
	typeName     string
}
