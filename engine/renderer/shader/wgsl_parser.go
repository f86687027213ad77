package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormats maps WGSL vertex input types to wgpu vertex formats.
// Only 32-bit component types are listed; the skinned vertex layout uses nothing narrower.
var vertexFormats = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
}

// shorthandTypes expands WGSL predeclared aliases so the lookup tables only hold one spelling.
var shorthandTypes = strings.NewReplacer(
	"vec2f", "vec2<f32>", "vec3f", "vec3<f32>", "vec4f", "vec4<f32>",
	"vec2i", "vec2<i32>", "vec3i", "vec3<i32>", "vec4i", "vec4<i32>",
	"vec2u", "vec2<u32>", "vec3u", "vec3<u32>", "vec4u", "vec4<u32>",
	"mat4x4f", "mat4x4<f32>", "mat3x3f", "mat3x3<f32>",
)

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex skips any leading attributes and captures the member name and its type.
	fieldRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	// resourceRegex matches declarations such as
	// @group(0) @binding(1) var<uniform> model_data: ModelData;
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
)

// parseEntryPoints returns the first @vertex and @fragment function names, empty when absent.
func parseEntryPoints(source string) (vertex, fragment string) {
	if m := vertexEntryRegex.FindStringSubmatch(source); m != nil {
		vertex = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(source); m != nil {
		fragment = m[1]
	}
	return vertex, fragment
}

// parseStructs returns every struct declared in comment-free WGSL source, in source order.
func parseStructs(source string) []structDecl {
	matches := structRegex.FindAllStringSubmatch(source, -1)
	structs := make([]structDecl, 0, len(matches))
	for _, m := range matches {
		structs = append(structs, structDecl{name: m[1], fields: parseFields(m[2])})
	}
	return structs
}

// parseFields splits a struct body into members. Commas nested inside angle brackets,
// as in array<mat4x4<f32>, 128>, do not separate members.
func parseFields(body string) []field {
	parts := splitTopLevel(body)
	fields := make([]field, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := fieldRegex.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		f := field{
			name:     m[1],
			typeName: normalizeType(m[2]),
			location: -1,
			builtin:  builtinRegex.MatchString(part),
		}
		if loc := locationRegex.FindStringSubmatch(part); loc != nil {
			f.location, _ = strconv.Atoi(loc[1])
		}
		fields = append(fields, f)
	}
	return fields
}

// parseResources returns every @group/@binding declaration in comment-free WGSL source.
func parseResources(source string) []resourceDecl {
	matches := resourceRegex.FindAllStringSubmatch(source, -1)
	decls := make([]resourceDecl, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		decls = append(decls, resourceDecl{
			group:        group,
			binding:      binding,
			addressSpace: strings.TrimSpace(m[3]),
			name:         m[4],
			typeName:     normalizeType(m[5]),
		})
	}
	return decls
}

// normalizeType removes whitespace and expands shorthand aliases so "array<mat4x4f, 128>"
// and "array<mat4x4<f32>,128>" resolve identically.
func normalizeType(typeName string) string {
	typeName = strings.Join(strings.Fields(typeName), "")
	return shorthandTypes.Replace(typeName)
}

// splitTopLevel splits s at commas that are not nested inside angle brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line comments and (possibly nested) block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
