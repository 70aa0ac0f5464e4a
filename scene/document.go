// Package scene decodes the glTF scene graph of a VRM file.
package scene

import (
	"bytes"
	"encoding/json"

	"github.com/antonholmquist/jason"
	"github.com/binzume/vrmparser/glb"
	"github.com/qmuntal/gltf"
)

// Document is a decoded scene graph.
//
// Fields is the generic top-level JSON view of the document. For a degraded
// document, GLTF is nil and Fields holds only the keys in DegradedKeys.
type Document struct {
	GLTF     *gltf.Document
	Fields   map[string]interface{}
	Degraded bool

	// Profile is the name of the profile that decoded the document.
	Profile  string
	Attempts []Attempt
}

// Attempt records the outcome of one decode attempt.
type Attempt struct {
	Profile string
	Err     error
}

// DegradedKeys are the top-level keys copied from the JSON chunk in degraded mode.
var DegradedKeys = []string{"nodes", "meshes", "materials", "textures", "images", "buffers", "extensions"}

func newDocument(doc *gltf.Document) (*Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	fields, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return &Document{GLTF: doc, Fields: fields}, nil
}

// FromJSON builds a degraded document from a parsed JSON chunk.
// Only the arrays in DegradedKeys and the extensions object are kept.
func FromJSON(obj *jason.Object) *Document {
	fields := map[string]interface{}{}
	for _, key := range DegradedKeys {
		v, err := obj.GetValue(key)
		if err != nil {
			continue
		}
		if key == "extensions" {
			if _, err := v.Object(); err != nil {
				continue
			}
		} else if _, err := v.Array(); err != nil {
			continue
		}
		if plain, err := glb.Plain(v); err == nil {
			fields[key] = plain
		}
	}
	return &Document{Fields: fields, Degraded: true}
}

func (d *Document) Extensions() map[string]interface{} {
	if ext, ok := d.Fields["extensions"].(map[string]interface{}); ok {
		return ext
	}
	return map[string]interface{}{}
}

// Array returns a top-level array such as "nodes" or "materials".
func (d *Document) Array(key string) []interface{} {
	a, _ := d.Fields[key].([]interface{})
	return a
}

// AssetVersion returns asset.version or "".
func (d *Document) AssetVersion() string {
	if d.GLTF != nil {
		return d.GLTF.Asset.Version
	}
	if asset, ok := d.Fields["asset"].(map[string]interface{}); ok {
		v, _ := asset["version"].(string)
		return v
	}
	return ""
}

func decodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
