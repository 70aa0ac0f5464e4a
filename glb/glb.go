// Package glb reads the binary glTF container used by .vrm files.
//
// https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#binary-gltf-layout
package glb

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	Magic   = 0x46546C67 // "glTF"
	Version = 2

	ChunkJSON = 0x4E4F534A // "JSON"
	ChunkBIN  = 0x004E4942 // "BIN\0"

	HeaderSize      = 12
	ChunkHeaderSize = 8
)

type Header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type Chunk struct {
	Length uint32
	Type   uint32
	Data   []byte // view into the container buffer
}

// Container is a validated GLB buffer. Chunks are views into Data.
type Container struct {
	Header Header
	Data   []byte

	json Chunk
}

// Read validates the GLB header and the first chunk of data.
// data is retained by the returned container and must not be modified.
func Read(data []byte) (*Container, error) {
	if len(data) < HeaderSize {
		return nil, errors.Wrapf(ErrTooShort, "%d bytes", len(data))
	}
	h := Header{
		Magic:   binary.LittleEndian.Uint32(data[0:4]),
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Length:  binary.LittleEndian.Uint32(data[8:12]),
	}
	if h.Magic != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "0x%08x", h.Magic)
	}
	if h.Version != Version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", h.Version)
	}
	if uint64(h.Length) != uint64(len(data)) {
		return nil, errors.Wrapf(ErrLengthMismatch, "declared %d, actual %d", h.Length, len(data))
	}
	if len(data)-HeaderSize < ChunkHeaderSize {
		return nil, ErrTruncatedChunkHeader
	}
	if t := binary.LittleEndian.Uint32(data[HeaderSize+4:]); t != ChunkJSON {
		return nil, errors.Wrapf(ErrFirstChunkNotJSON, "type 0x%08x", t)
	}
	first, _, err := readChunk(data, HeaderSize)
	if err != nil {
		return nil, err
	}
	c := &Container{Header: h, Data: data}
	c.json = first
	return c, nil
}

// readChunk reads one length-prefixed chunk at offset and returns the offset of the next one.
func readChunk(data []byte, offset int) (Chunk, int, error) {
	if len(data)-offset < ChunkHeaderSize {
		return Chunk{}, 0, errors.Wrapf(ErrMalformedChunkStream, "chunk header at %d", offset)
	}
	length := binary.LittleEndian.Uint32(data[offset:])
	typ := binary.LittleEndian.Uint32(data[offset+4:])
	start := offset + ChunkHeaderSize
	if uint64(length) > uint64(len(data)-start) {
		return Chunk{}, 0, errors.Wrapf(ErrMalformedChunkStream, "chunk at %d: length %d exceeds buffer", offset, length)
	}
	end := start + int(length)
	return Chunk{Length: length, Type: typ, Data: data[start:end:end]}, end, nil
}

// JSONChunk returns the first chunk of the container.
func (c *Container) JSONChunk() Chunk {
	return c.json
}

// Chunks returns an iterator over all chunks, JSON chunk first.
func (c *Container) Chunks() *ChunkIterator {
	return &ChunkIterator{data: c.Data, offset: HeaderSize}
}

// AllChunks walks the whole chunk stream.
func (c *Container) AllChunks() ([]Chunk, error) {
	var chunks []Chunk
	it := c.Chunks()
	for it.Next() {
		chunks = append(chunks, it.Chunk())
	}
	return chunks, it.Err()
}

// BinaryChunks returns the chunks following the JSON chunk, in file order.
func (c *Container) BinaryChunks() ([]Chunk, error) {
	chunks, err := c.AllChunks()
	if err != nil {
		return nil, err
	}
	return chunks[1:], nil
}

// ChunkIterator walks length-prefixed chunks until the buffer is exhausted.
//
//	it := c.Chunks()
//	for it.Next() {
//		chunk := it.Chunk()
//	}
//	if err := it.Err(); err != nil { ... }
type ChunkIterator struct {
	data   []byte
	offset int
	chunk  Chunk
	err    error
}

func (it *ChunkIterator) Next() bool {
	if it.err != nil || it.offset >= len(it.data) {
		return false
	}
	chunk, next, err := readChunk(it.data, it.offset)
	if err != nil {
		it.err = err
		return false
	}
	it.chunk = chunk
	it.offset = next
	return true
}

func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

func (it *ChunkIterator) Err() error {
	return it.err
}
