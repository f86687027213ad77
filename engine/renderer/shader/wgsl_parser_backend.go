package shader

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// primitiveLayouts holds the size and alignment of the WGSL scalar, vector and matrix types
// that can appear in a uniform or storage buffer.
var primitiveLayouts = map[string]typeLayout{
	"f32": {4, 4}, "i32": {4, 4}, "u32": {4, 4},
	"vec2<f32>": {8, 8}, "vec2<i32>": {8, 8}, "vec2<u32>": {8, 8},
	"vec3<f32>": {12, 16}, "vec3<i32>": {12, 16}, "vec3<u32>": {12, 16},
	"vec4<f32>": {16, 16}, "vec4<i32>": {16, 16}, "vec4<u32>": {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
}

func roundUp(align, value uint64) uint64 {
	if align == 0 {
		return value
	}
	return (value + align - 1) &^ (align - 1)
}

// resolveLayout returns the layout of a primitive, a known struct or a fixed-size array.
// Runtime-sized arrays resolve to a single element stride.
func resolveLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := primitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return typeLayout{}, false
	}

	inner := typeName[len("array<") : len(typeName)-1]
	elemType, count := inner, uint64(1)
	if i := strings.LastIndex(inner, ","); i >= 0 && !strings.Contains(inner[i:], ">") {
		n, err := strconv.ParseUint(inner[i+1:], 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		elemType, count = inner[:i], n
	}
	elem, ok := resolveLayout(elemType, known)
	if !ok {
		return typeLayout{}, false
	}
	return typeLayout{size: count * roundUp(elem.align, elem.size), align: elem.align}, true
}

// structLayout places each member at its next aligned offset and rounds the total up to the
// struct alignment. Builtin members are not part of any buffer and are skipped.
func structLayout(s structDecl, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	maxAlign := uint64(1)
	for _, f := range s.fields {
		if f.builtin {
			continue
		}
		l, ok := resolveLayout(f.typeName, known)
		if !ok {
			return typeLayout{}, false
		}
		offset = roundUp(l.align, offset) + l.size
		if l.align > maxAlign {
			maxAlign = l.align
		}
	}
	return typeLayout{size: roundUp(maxAlign, offset), align: maxAlign}, true
}

// structLayouts resolves every struct, repeating until structs that embed other structs settle.
func structLayouts(structs []structDecl) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	pending := append([]structDecl(nil), structs...)
	for len(pending) > 0 {
		next := pending[:0]
		for _, s := range pending {
			if l, ok := structLayout(s, resolved); ok {
				resolved[s.name] = l
			} else {
				next = append(next, s)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return resolved
}

// bufferEntry builds the layout entry of a buffer resource. Handle types (textures and
// samplers) report false.
func bufferEntry(d resourceDecl, visibility wgpu.ShaderStage, known map[string]typeLayout) (wgpu.BindGroupLayoutEntry, bool) {
	entry := wgpu.BindGroupLayoutEntry{Binding: uint32(d.binding), Visibility: visibility}
	switch {
	case d.addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(d.addressSpace, "storage") && strings.Contains(d.addressSpace, "read_write"):
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case strings.HasPrefix(d.addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	default:
		return entry, false
	}
	if l, ok := resolveLayout(d.typeName, known); ok {
		entry.Buffer.MinBindingSize = l.size
	}
	return entry, true
}

// bindGroupLayouts groups the buffer resources by @group, with entries sorted by binding.
func bindGroupLayouts(decls []resourceDecl, visibility wgpu.ShaderStage, known map[string]typeLayout) map[int]wgpu.BindGroupLayoutDescriptor {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, d := range decls {
		if entry, ok := bufferEntry(d, visibility, known); ok {
			groups[d.group] = append(groups[d.group], entry)
		}
	}
	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		out[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return out
}

// vertexLayout converts a vertex input struct into a tightly packed buffer layout.
// A struct with a builtin member is a stage output, and a struct with an unmapped type
// cannot be fed from a vertex buffer; both report false.
func vertexLayout(s structDecl) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(s.fields))
	var offset uint64
	for _, f := range s.fields {
		if f.builtin || f.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		info, ok := vertexFormats[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}
	if len(attrs) == 0 {
		return wgpu.VertexBufferLayout{}, false
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}
