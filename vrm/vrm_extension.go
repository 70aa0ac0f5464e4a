package vrm

import (
	"github.com/pkg/errors"
)

// ExtensionData is either *V0 or *V1. Switch on the concrete type or Version().
type ExtensionData interface {
	Version() string
}

// V0 holds the fields of the VRM 0.0 "VRM" extension.
type V0 struct {
	Meta               map[string]interface{} `json:"meta"`
	Humanoid           map[string]interface{} `json:"humanoid"`
	FirstPerson        map[string]interface{} `json:"firstPerson"`
	BlendShapeMaster   map[string]interface{} `json:"blendShapeMaster"`
	SecondaryAnimation map[string]interface{} `json:"secondaryAnimation"`
	MaterialProperties []interface{}          `json:"materialProperties"`
}

func (*V0) Version() string { return Version0 }

// V1 holds the fields of the VRM 1.0 "VRMC_vrm" extension.
type V1 struct {
	SpecVersion        string                 `json:"specVersion"`
	Meta               map[string]interface{} `json:"meta"`
	Humanoid           map[string]interface{} `json:"humanoid"`
	FirstPerson        map[string]interface{} `json:"firstPerson"`
	Expressions        map[string]interface{} `json:"expressions"`
	LookAt             map[string]interface{} `json:"lookAt"`
	SpringBone         map[string]interface{} `json:"springBone"`
	MaterialProperties []interface{}          `json:"materialProperties"`
}

func (*V1) Version() string { return Version1 }

// DetectVersion returns "1.0" if VRMC_vrm is present, otherwise "0.0" if VRM is present.
func DetectVersion(extensions map[string]interface{}) (string, error) {
	if _, ok := extensions[ExtensionNameV1]; ok {
		return Version1, nil
	}
	if _, ok := extensions[ExtensionName]; ok {
		return Version0, nil
	}
	return "", ErrNoVRMExtension
}

// ParseExtensions extracts the VRM extension data from a glTF extensions object.
// Missing fields default to empty values.
func ParseExtensions(extensions map[string]interface{}) (ExtensionData, error) {
	version, err := DetectVersion(extensions)
	if err != nil {
		return nil, err
	}
	if version == Version1 {
		return parseV1(extensions)
	}
	return parseV0(extensions)
}

func parseV0(extensions map[string]interface{}) (*V0, error) {
	ext, ok := extensions[ExtensionName].(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrMalformedExtension, "%s is not an object", ExtensionName)
	}
	p := fieldParser{ext: ext}
	v := &V0{
		Meta:               p.object("meta"),
		Humanoid:           p.object("humanoid"),
		FirstPerson:        p.object("firstPerson"),
		BlendShapeMaster:   p.object("blendShapeMaster"),
		SecondaryAnimation: p.object("secondaryAnimation"),
		MaterialProperties: p.array("materialProperties"),
	}
	if p.err != nil {
		return nil, p.err
	}
	return v, nil
}

func parseV1(extensions map[string]interface{}) (*V1, error) {
	ext, ok := extensions[ExtensionNameV1].(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrMalformedExtension, "%s is not an object", ExtensionNameV1)
	}
	p := fieldParser{ext: ext}
	v := &V1{
		SpecVersion:        p.str("specVersion"),
		Meta:               p.object("meta"),
		Humanoid:           p.object("humanoid"),
		FirstPerson:        p.object("firstPerson"),
		Expressions:        p.object("expressions"),
		LookAt:             p.object("lookAt"),
		SpringBone:         p.object("springBone"),
		MaterialProperties: p.array("materialProperties"),
	}
	// spring bones live in their own extension since 1.0
	if sb, ok := extensions[SpringBoneExtensionName].(map[string]interface{}); ok {
		v.SpringBone = sb
	}
	if p.err != nil {
		return nil, p.err
	}
	return v, nil
}

// fieldParser reads typed fields and keeps the first type error.
type fieldParser struct {
	ext map[string]interface{}
	err error
}

func (p *fieldParser) object(key string) map[string]interface{} {
	switch v := p.ext[key].(type) {
	case map[string]interface{}:
		return v
	case nil:
	default:
		p.fail(key, "an object")
	}
	return map[string]interface{}{}
}

func (p *fieldParser) array(key string) []interface{} {
	switch v := p.ext[key].(type) {
	case []interface{}:
		return v
	case nil:
	default:
		p.fail(key, "an array")
	}
	return []interface{}{}
}

func (p *fieldParser) str(key string) string {
	switch v := p.ext[key].(type) {
	case string:
		return v
	case nil:
	default:
		p.fail(key, "a string")
	}
	return ""
}

func (p *fieldParser) fail(key, want string) {
	if p.err == nil {
		p.err = errors.Wrapf(ErrMalformedExtension, "%s must be %s", key, want)
	}
}
