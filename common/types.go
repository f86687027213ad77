// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// DefaultSpecular is the specular colour assigned to materials whose source format carries no specular term.
var DefaultSpecular = [4]float32{0.5, 0.5, 0.5, 1}

// PhongMaterial represents material colours imported from a model file.
// The renderer receives the ambient, diffuse and specular terms for every draw.
type PhongMaterial struct {
	// Name is the material identifier.
	Name string

	// Ambient is the ambient reflectance (RGBA). All zero means "use Diffuse".
	Ambient [4]float32

	// Diffuse is the diffuse reflectance (RGBA).
	Diffuse [4]float32

	// Specular is the specular reflectance (RGBA).
	Specular [4]float32
}

// ResolvedAmbient returns the ambient colour to render with.
// Many exporters leave the ambient term black, in which case the diffuse colour is used instead.
//
// Returns:
//   - [4]float32: Ambient, or Diffuse when Ambient is all zero
func (m PhongMaterial) ResolvedAmbient() [4]float32 {
	if m.Ambient == ([4]float32{}) {
		return m.Diffuse
	}
	return m.Ambient
}

// DefaultMaterial returns the material used when a mesh references no material or an out-of-range one.
//
// Returns:
//   - PhongMaterial: a neutral grey material
func DefaultMaterial() PhongMaterial {
	return PhongMaterial{
		Name:     "default",
		Diffuse:  [4]float32{0.8, 0.8, 0.8, 1},
		Specular: DefaultSpecular,
	}
}
