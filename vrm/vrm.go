package vrm

// https://vrm.dev/
// https://github.com/vrm-c/vrm-specification/blob/master/specification/0.0/README.ja.md
// https://github.com/vrm-c/vrm-specification/tree/master/specification/VRMC_vrm-1.0

import (
	"bytes"
	"encoding/json"

	"github.com/qmuntal/gltf"
)

const (
	ExtensionName           = "VRM"
	ExtensionNameV1         = "VRMC_vrm"
	SpringBoneExtensionName = "VRMC_springBone"

	// Format identifies the source family in Metadata.
	Format = "VRM"

	Version0       = "0.0"
	Version1       = "1.0"
	VersionUnknown = "unknown"
)

func init() {
	gltf.RegisterExtension(ExtensionName, Unmarshal)
	gltf.RegisterExtension(ExtensionNameV1, Unmarshal)
	gltf.RegisterExtension(SpringBoneExtensionName, Unmarshal)
}

// Unmarshal decodes a VRM extension object as a generic map.
func Unmarshal(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var ext map[string]interface{}
	if err := dec.Decode(&ext); err != nil {
		return nil, err
	}
	return ext, nil
}
