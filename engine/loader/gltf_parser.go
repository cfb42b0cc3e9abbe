package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Common errors returned by the parser
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorOutOfRange = errors.New("accessor reads past the end of its buffer")
)

// gltfMaxZeroAccessorCount caps the element count of accessors without a buffer view, which
// decode to zeros without any backing data.
const gltfMaxZeroAccessorCount = 1 << 24

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	// fsys resolves document and buffer paths, nil reads from the operating system
	fsys fs.FS

	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF or GLB document and decodes its accessors.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file. The format is detected from the extension or the
	// GLB magic number.
	//
	// Parameters:
	//   - name: path to the file
	//
	// Returns:
	//   - error: error if reading or parsing fails
	Parse(name string) error

	// ParseBytes parses an in-memory document. External buffer URIs resolve against the
	// working directory.
	//
	// Parameters:
	//   - data: glTF JSON or GLB bytes
	//   - isGLB: true if data is in GLB format
	//
	// Returns:
	//   - error: error if parsing fails
	ParseBytes(data []byte, isGLB bool) error

	// Document returns the parsed document, nil before a successful parse.
	Document() *gltfDocument

	// ReadFloats decodes an accessor into components floats per element. Integer components
	// are normalized to [0, 1] or [-1, 1].
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//   - components: the expected number of components per element
	//
	// Returns:
	//   - []float32: Count*components values
	//   - error: error if the accessor is malformed or has another element type
	ReadFloats(accessorIndex, components int) ([]float32, error)

	// ReadIndices decodes a SCALAR unsigned accessor into indices.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the indices
	//   - error: error if the accessor is malformed
	ReadIndices(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a glTF parser reading from fsys, or the operating system when nil.
func newGLTFParser(fsys fs.FS) gltfParser {
	return &gltfParserImpl{fsys: fsys}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) readFile(name string) ([]byte, error) {
	if p.fsys != nil {
		return fs.ReadFile(p.fsys, name)
	}
	return os.ReadFile(name)
}

func (p *gltfParserImpl) join(uri string) string {
	if p.fsys != nil {
		return path.Join(p.baseDir, uri)
	}
	return filepath.Join(p.baseDir, uri)
}

func (p *gltfParserImpl) Parse(name string) error {
	if p.fsys != nil {
		p.baseDir = path.Dir(name)
	} else {
		p.baseDir = filepath.Dir(name)
	}

	data, err := p.readFile(name)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	isGLB := strings.EqualFold(filepath.Ext(name), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data) == gltfGLBMagic)
	return p.ParseBytes(data, isGLB)
}

func (p *gltfParserImpl) ParseBytes(data []byte, isGLB bool) error {
	if isGLB {
		var err error
		if data, err = p.splitGLB(data); err != nil {
			return err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// splitGLB validates the GLB container, keeps its BIN chunk and returns its JSON chunk.
func (p *gltfParserImpl) splitGLB(data []byte) ([]byte, error) {
	if len(data) < gltfGLBHeaderSize {
		return nil, errors.New("GLB file too small")
	}
	if binary.LittleEndian.Uint32(data[0:]) != gltfGLBMagic {
		return nil, errInvalidGLBMagic
	}
	if binary.LittleEndian.Uint32(data[4:]) != gltfGLBVersion {
		return nil, errInvalidGLBVersion
	}

	var jsonChunk []byte
	for rest := data[gltfGLBHeaderSize:]; len(rest) > 0; {
		if len(rest) < gltfGLBChunkHeader {
			return nil, errors.New("truncated GLB chunk header")
		}
		length := int(binary.LittleEndian.Uint32(rest[0:]))
		kind := binary.LittleEndian.Uint32(rest[4:])
		rest = rest[gltfGLBChunkHeader:]
		if length > len(rest) {
			return nil, errors.New("truncated GLB chunk data")
		}

		switch kind {
		case gltfGLBChunkJSON:
			jsonChunk = rest[:length]
		case gltfGLBChunkBIN:
			p.glbBinaryChunk = rest[:length]
		}
		rest = rest[length:]
	}

	if jsonChunk == nil {
		return nil, errMissingJSONChunk
	}
	return jsonChunk, nil
}

// loadBuffers loads all buffer data from URIs, embedded data or the GLB binary chunk.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		default:
			data, err := p.readFile(p.join(buf.URI))
			if err != nil {
				return fmt.Errorf("buffer %d: failed to load %q: %w", i, buf.URI, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// decodeDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errInvalidBufferURI
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

// elements locates the bytes of every element of an accessor. A nil data slice means the
// accessor has no buffer view and all of its elements are zero.
func (p *gltfParserImpl) elements(accessorIndex int) (acc *gltfAccessor, data []byte, stride, size int, err error) {
	if p.document == nil {
		return nil, nil, 0, 0, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, nil, 0, 0, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}
	acc = &p.document.Accessors[accessorIndex]
	if acc.Sparse != nil {
		return nil, nil, 0, 0, errors.New("sparse accessors are not supported")
	}

	size = gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if size == 0 || acc.Count < 0 {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d: unsupported layout %s/%d", accessorIndex, acc.Type, acc.ComponentType)
	}
	if acc.BufferView == nil || acc.Count == 0 {
		if acc.Count > gltfMaxZeroAccessorCount {
			return nil, nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, errAccessorOutOfRange)
		}
		return acc, nil, size, size, nil
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d: buffer view %d out of range", accessorIndex, *acc.BufferView)
	}

	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, nil, 0, 0, fmt.Errorf("buffer view %d: buffer %d out of range", *acc.BufferView, bv.Buffer)
	}
	stride = size
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	buf := p.document.Buffers[bv.Buffer].Data
	start := bv.ByteOffset + acc.ByteOffset
	limit := min(len(buf), bv.ByteOffset+bv.ByteLength)
	// count is checked before it is multiplied so a huge count cannot wrap the end offset
	if start < 0 || start > limit-size || acc.Count-1 > (limit-start-size)/stride {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, errAccessorOutOfRange)
	}
	end := start + (acc.Count-1)*stride + size
	return acc, buf[start:end], stride, size, nil
}

func (p *gltfParserImpl) ReadFloats(accessorIndex, components int) ([]float32, error) {
	acc, data, stride, _, err := p.elements(accessorIndex)
	if err != nil {
		return nil, err
	}
	if gltfAccessorTypeComponentCount(acc.Type) != components {
		return nil, fmt.Errorf("accessor %d is %s, want %d components", accessorIndex, acc.Type, components)
	}

	out := make([]float32, acc.Count*components)
	if data == nil {
		return out, nil
	}

	csize := gltfComponentTypeSize(acc.ComponentType)
	for i := range acc.Count {
		elem := data[i*stride:]
		for c := range components {
			out[i*components+c] = decodeComponent(elem[c*csize:], acc.ComponentType)
		}
	}
	return out, nil
}

func (p *gltfParserImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc, data, stride, _, err := p.elements(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}

	out := make([]uint32, acc.Count)
	if data == nil {
		return out, nil
	}
	for i := range acc.Count {
		elem := data[i*stride:]
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[i] = uint32(elem[0])
		case gltfComponentTypeUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(elem))
		case gltfComponentTypeUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(elem)
		default:
			return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
		}
	}
	return out, nil
}

// decodeComponent reads one little-endian component, normalizing integer types.
func decodeComponent(b []byte, componentType int) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeUnsignedByte:
		return float32(b[0]) / math.MaxUint8
	case gltfComponentTypeUnsignedShort:
		return float32(binary.LittleEndian.Uint16(b)) / math.MaxUint16
	case gltfComponentTypeByte:
		return max(float32(int8(b[0]))/math.MaxInt8, -1)
	case gltfComponentTypeShort:
		return max(float32(int16(binary.LittleEndian.Uint16(b)))/math.MaxInt16, -1)
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	default:
		return 0
	}
}
