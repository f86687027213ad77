package loader

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	document *gltf.Document
}

// gltfParser defines the interface for loading glTF/GLB documents and reading typed accessor data.
// Decoding and buffer resolution are delegated to qmuntal/gltf; this layer adds index validation
// and the conversions the extractors need.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// External buffers are resolved relative to the file.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader. JSON and GLB are detected automatically.
	// Only embedded buffers (GLB chunks or data URIs) can be resolved.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader) error

	// Document returns the parsed glTF document, or nil before a successful parse.
	//
	// Returns:
	//   - *gltf.Document: the parsed document or nil
	Document() *gltf.Document

	// ReadPositions reads a VEC3 position accessor.
	ReadPositions(accessor uint32) ([][3]float32, error)

	// ReadNormals reads a VEC3 normal accessor.
	ReadNormals(accessor uint32) ([][3]float32, error)

	// ReadIndices reads an index accessor of any unsigned component type.
	ReadIndices(accessor uint32) ([]uint32, error)

	// ReadJoints reads a JOINTS_n accessor, widening byte indices to uint16.
	ReadJoints(accessor uint32) ([][4]uint16, error)

	// ReadWeights reads a WEIGHTS_n accessor, converting normalized integers to floats.
	ReadWeights(accessor uint32) ([][4]float32, error)

	// ReadScalars reads a float SCALAR accessor such as animation key times.
	ReadScalars(accessor uint32) ([]float32, error)

	// ReadVec3s reads a float VEC3 accessor such as translation or scale keys.
	ReadVec3s(accessor uint32) ([][3]float32, error)

	// ReadVec4s reads a VEC4 accessor such as rotation keys. Normalized integer data is converted to floats.
	ReadVec4s(accessor uint32) ([][4]float32, error)

	// ReadMat4s reads a float MAT4 accessor such as inverse bind matrices.
	ReadMat4s(accessor uint32) ([]mgl32.Mat4, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a parser with no document loaded.
//
// Returns:
//   - gltfParser: the parser
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Parse(path string) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	p.document = doc
	return nil
}

func (p *gltfParserImpl) ParseReader(r io.Reader) error {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return errors.Wrap(err, "decode glTF stream")
	}
	p.document = doc
	return nil
}

func (p *gltfParserImpl) Document() *gltf.Document {
	return p.document
}

func (p *gltfParserImpl) accessor(index uint32) (*gltf.Accessor, error) {
	if p.document == nil {
		return nil, errors.New("no document loaded")
	}
	if int(index) >= len(p.document.Accessors) {
		return nil, errors.Errorf("accessor %d out of range (%d accessors)", index, len(p.document.Accessors))
	}
	return p.document.Accessors[index], nil
}

func (p *gltfParserImpl) ReadPositions(index uint32) ([][3]float32, error) {
	acr, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadPosition(p.document, acr, nil)
	return out, errors.Wrapf(err, "read positions from accessor %d", index)
}

func (p *gltfParserImpl) ReadNormals(index uint32) ([][3]float32, error) {
	acr, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadNormal(p.document, acr, nil)
	return out, errors.Wrapf(err, "read normals from accessor %d", index)
}

func (p *gltfParserImpl) ReadIndices(index uint32) ([]uint32, error) {
	acr, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadIndices(p.document, acr, nil)
	return out, errors.Wrapf(err, "read indices from accessor %d", index)
}

func (p *gltfParserImpl) ReadJoints(index uint32) ([][4]uint16, error) {
	acr, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadJoints(p.document, acr, nil)
	return out, errors.Wrapf(err, "read joints from accessor %d", index)
}

func (p *gltfParserImpl) ReadWeights(index uint32) ([][4]float32, error) {
	acr, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	out, err := modeler.ReadWeights(p.document, acr, nil)
	return out, errors.Wrapf(err, "read weights from accessor %d", index)
}

func (p *gltfParserImpl) readAny(index uint32) (any, error) {
	acr, err := p.accessor(index)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(p.document, acr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "read accessor %d", index)
	}
	return data, nil
}

func (p *gltfParserImpl) ReadScalars(index uint32) ([]float32, error) {
	data, err := p.readAny(index)
	if err != nil {
		return nil, err
	}
	out, ok := data.([]float32)
	if !ok {
		return nil, unexpectedAccessorType(index, "float SCALAR", data)
	}
	return out, nil
}

func (p *gltfParserImpl) ReadVec3s(index uint32) ([][3]float32, error) {
	data, err := p.readAny(index)
	if err != nil {
		return nil, err
	}
	out, ok := data.([][3]float32)
	if !ok {
		return nil, unexpectedAccessorType(index, "float VEC3", data)
	}
	return out, nil
}

func (p *gltfParserImpl) ReadVec4s(index uint32) ([][4]float32, error) {
	data, err := p.readAny(index)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case [][4]float32:
		return v, nil
	case [][4]int8:
		return normalizeVec4s(v, 127, true), nil
	case [][4]uint8:
		return normalizeVec4s(v, 255, false), nil
	case [][4]int16:
		return normalizeVec4s(v, 32767, true), nil
	case [][4]uint16:
		return normalizeVec4s(v, 65535, false), nil
	default:
		return nil, unexpectedAccessorType(index, "VEC4", data)
	}
}

func (p *gltfParserImpl) ReadMat4s(index uint32) ([]mgl32.Mat4, error) {
	data, err := p.readAny(index)
	if err != nil {
		return nil, err
	}
	raw, ok := data.([][4][4]float32)
	if !ok {
		return nil, unexpectedAccessorType(index, "float MAT4", data)
	}

	// Accessor matrices are column-major, the same order mgl32 stores.
	out := make([]mgl32.Mat4, len(raw))
	for i, m := range raw {
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				out[i][c*4+r] = m[c][r]
			}
		}
	}
	return out, nil
}

func normalizeVec4s[T int8 | uint8 | int16 | uint16](in [][4]T, scale float32, signed bool) [][4]float32 {
	out := make([][4]float32, len(in))
	for i, v := range in {
		for k := 0; k < 4; k++ {
			f := float32(v[k]) / scale
			if signed && f < -1 {
				f = -1
			}
			out[i][k] = f
		}
	}
	return out
}

func unexpectedAccessorType(index uint32, want string, got any) error {
	return fmt.Errorf("accessor %d: expected %s data, got %T", index, want, got)
}
