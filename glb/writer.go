package glb

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Write writes a GLB container holding jsonData followed by one BIN chunk per bin.
// Chunk data is padded to 4 bytes.
func Write(w io.Writer, jsonData []byte, bin ...[]byte) error {
	chunks := []Chunk{{Type: ChunkJSON, Data: pad(jsonData, ' ')}}
	for _, b := range bin {
		chunks = append(chunks, Chunk{Type: ChunkBIN, Data: pad(b, 0)})
	}
	length := HeaderSize
	for _, c := range chunks {
		length += ChunkHeaderSize + len(c.Data)
	}
	if err := binary.Write(w, binary.LittleEndian, Header{Magic: Magic, Version: Version, Length: uint32(length)}); err != nil {
		return err
	}
	for _, c := range chunks {
		if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(len(c.Data)), c.Type}); err != nil {
			return err
		}
		if _, err := w.Write(c.Data); err != nil {
			return err
		}
	}
	return nil
}

// Bytes is like Write but returns the encoded container.
func Bytes(jsonData []byte, bin ...[]byte) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, jsonData, bin...)
	return buf.Bytes()
}

func pad(data []byte, c byte) []byte {
	n := (4 - len(data)%4) % 4
	if n == 0 {
		return data
	}
	padded := make([]byte, len(data), len(data)+n)
	copy(padded, data)
	for i := 0; i < n; i++ {
		padded = append(padded, c)
	}
	return padded
}
