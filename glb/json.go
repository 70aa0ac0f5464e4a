package glb

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/antonholmquist/jason"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ParseJSON decodes a JSON chunk payload into an object.
// A leading UTF-8 BOM and trailing padding are tolerated. Anything else after
// the object is an error.
func ParseJSON(data []byte) (*jason.Object, error) {
	data = bytes.TrimRight(data, " \x00")
	r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidJSON, err.Error())
	}
	if !json.Valid(data) {
		return nil, errors.Wrap(ErrInvalidJSON, "syntax error")
	}
	obj, err := jason.NewObjectFromBytes(data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidJSON, err.Error())
	}
	return obj, nil
}

// Plain converts v to maps, slices and json.Number values.
func Plain(v *jason.Value) (interface{}, error) {
	data, err := v.Marshal()
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// JSON parses the container's JSON chunk.
func (c *Container) JSON() (*jason.Object, error) {
	return ParseJSON(c.json.Data)
}

// ReadFile reads and validates the container at path.
func ReadFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "glb")
	}
	return Read(data)
}
