package shader

import (
	"sort"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
// All reflection happens once at construction; the accessors are read-only.
type shader struct {
	key        string
	source     string
	visibility wgpu.ShaderStage

	structs      map[string]typeLayout
	vertexLayout []wgpu.VertexBufferLayout
	bindGroups   map[int]wgpu.BindGroupLayoutDescriptor
	bindingNames map[int]map[int]string

	vertexEntry, fragmentEntry string
}

// Shader is a WGSL module together with the layouts reflected from its source: the vertex
// buffer layout of its vertex input struct, the bind group layouts of its buffer resources
// and the host-shareable size of every struct it declares.
//
// The reflected sizes let callers check that Go-side GPU structs marshal to exactly the
// byte layout the shader expects.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's key
	Key() string

	// Source retrieves the WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// Module returns a shader module descriptor ready for wgpu.Device.CreateShaderModule.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor labelled with Key
	Module() *wgpu.ShaderModuleDescriptor

	// EntryPoint returns the first entry point declared for a stage.
	//
	// Parameters:
	//   - stage: wgpu.ShaderStageVertex or wgpu.ShaderStageFragment
	//
	// Returns:
	//   - string: the function name, or empty if the source declares none
	EntryPoint(stage wgpu.ShaderStage) string

	// VertexLayouts returns one buffer layout per vertex input struct, in source order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts, empty if the source declares none
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptor returns the layout of one @group.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, entries sorted by binding
	//   - bool: false if the source declares no buffer in that group
	BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool)

	// Groups returns the group indices that declare buffer resources, ascending.
	Groups() []int

	// BindingSize returns the minimum binding size of a buffer resource.
	//
	// Parameters:
	//   - group: the group index
	//   - binding: the binding index
	//
	// Returns:
	//   - uint64: the size in bytes, or 0 if the binding is unknown or unsized
	BindingSize(group, binding int) uint64

	// BindingName returns the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the group index
	//   - binding: the binding index
	//
	// Returns:
	//   - string: the variable name
	//   - bool: false if nothing is declared there
	BindingName(group, binding int) (string, bool)

	// StructSize returns the host-shareable size of a declared struct.
	//
	// Parameters:
	//   - name: the struct name
	//
	// Returns:
	//   - uint64: the size in bytes
	//   - bool: false if the struct is unknown or could not be resolved
	StructSize(name string) (uint64, bool)
}

var _ Shader = &shader{}

// NewShader reflects a WGSL source. Sources that share struct declarations can be joined
// with Compose before reflection.
//
// Parameters:
//   - key: the unique identifier used for the module label
//   - source: the WGSL source code
//   - visibility: the shader stages that see the source's bind group entries
//
// Returns:
//   - Shader: the reflected shader
func NewShader(key, source string, visibility wgpu.ShaderStage) Shader {
	cleaned := stripComments(source)
	structs := parseStructs(cleaned)
	layouts := structLayouts(structs)

	s := &shader{
		key:          key,
		source:       source,
		visibility:   visibility,
		structs:      layouts,
		bindingNames: make(map[int]map[int]string),
	}
	for _, st := range structs {
		if l, ok := vertexLayout(st); ok {
			s.vertexLayout = append(s.vertexLayout, l)
		}
	}

	s.vertexEntry, s.fragmentEntry = parseEntryPoints(cleaned)

	decls := parseResources(cleaned)
	for _, d := range decls {
		if s.bindingNames[d.group] == nil {
			s.bindingNames[d.group] = make(map[int]string)
		}
		s.bindingNames[d.group][d.binding] = d.name
	}
	s.bindGroups = bindGroupLayouts(decls, visibility, layouts)
	return s
}

// Compose joins WGSL fragments into one source, separated by blank lines.
//
// Parameters:
//   - sources: the fragments in declaration order
//
// Returns:
//   - string: the combined source
func Compose(sources ...string) string {
	trimmed := make([]string, 0, len(sources))
	for _, src := range sources {
		if src = strings.TrimSpace(src); src != "" {
			trimmed = append(trimmed, src)
		}
	}
	return strings.Join(trimmed, "\n\n") + "\n"
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label:          s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.source},
	}
}

func (s *shader) EntryPoint(stage wgpu.ShaderStage) string {
	switch stage {
	case wgpu.ShaderStageVertex:
		return s.vertexEntry
	case wgpu.ShaderStageFragment:
		return s.fragmentEntry
	}
	return ""
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayout
}

func (s *shader) BindGroupLayoutDescriptor(group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	d, ok := s.bindGroups[group]
	if ok {
		d.Label = s.key
	}
	return d, ok
}

func (s *shader) Groups() []int {
	groups := make([]int, 0, len(s.bindGroups))
	for g := range s.bindGroups {
		groups = append(groups, g)
	}
	sort.Ints(groups)
	return groups
}

func (s *shader) BindingSize(group, binding int) uint64 {
	for _, e := range s.bindGroups[group].Entries {
		if int(e.Binding) == binding {
			return e.Buffer.MinBindingSize
		}
	}
	return 0
}

func (s *shader) BindingName(group, binding int) (string, bool) {
	name, ok := s.bindingNames[group][binding]
	return name, ok
}

func (s *shader) StructSize(name string) (uint64, bool) {
	l, ok := s.structs[name]
	return l.size, ok
}
