package vrm

import (
	"encoding/json"
	"math"
	"strconv"
)

// Metadata is the version independent summary of a VRM model.
// Details is nil when the VRM version is unknown.
type Metadata struct {
	Format      string `json:"format"`
	Version     string `json:"version"`
	GltfVersion string `json:"gltfVersion"`
	*Details
}

type Details struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`

	// usage permissions, VRM 0.0 only
	AllowedUserName   *string `json:"allowedUserName"`
	ViolentUssageName *string `json:"violentUssageName"`
	SexualUssageName  *string `json:"sexualUssageName"`

	// HumanoidBones maps bone names to node indices.
	HumanoidBones map[string]int `json:"humanoidBones"`

	BlendShapes *Expressions `json:"blendShapes,omitempty"`
	Expressions Expressions  `json:"expressions"`
}

// Expressions is the blend shape group list of VRM 0.0 or the preset
// expression map of VRM 1.0. Check Metadata.Version before reading.
type Expressions struct {
	Groups  []interface{}
	Presets map[string]interface{}
}

func (e Expressions) MarshalJSON() ([]byte, error) {
	if e.Presets != nil {
		return json.Marshal(e.Presets)
	}
	if e.Groups == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Groups)
}

// Normalize builds Metadata from parsed extension data.
// data may be nil, in which case only the base fields are set.
func Normalize(data ExtensionData, gltfVersion string) *Metadata {
	m := &Metadata{Format: Format, Version: VersionUnknown, GltfVersion: gltfVersion}
	switch v := data.(type) {
	case *V0:
		m.Version = Version0
		m.Details = normalizeV0(v)
	case *V1:
		m.Version = Version1
		m.Details = normalizeV1(v)
	}
	return m
}

func normalizeV0(v *V0) *Details {
	groups, _ := v.BlendShapeMaster["blendShapeGroups"].([]interface{})
	if groups == nil {
		groups = []interface{}{}
	}
	// 0.0 has no separate expression concept; blend shapes serve both roles.
	blendShapes := Expressions{Groups: groups}
	return &Details{
		Title:             stringField(v.Meta, "title"),
		Author:            stringField(v.Meta, "author"),
		AllowedUserName:   stringField(v.Meta, "allowedUserName"),
		ViolentUssageName: stringField(v.Meta, "violentUssageName"),
		SexualUssageName:  stringField(v.Meta, "sexualUssageName"),
		HumanoidBones:     humanBones(v.Humanoid["humanBones"]),
		BlendShapes:       &blendShapes,
		Expressions:       blendShapes,
	}
}

func normalizeV1(v *V1) *Details {
	d := &Details{
		Title:         stringField(v.Meta, "title"),
		HumanoidBones: humanBones(v.Humanoid["humanBones"]),
	}
	if authors, ok := v.Meta["authors"].([]interface{}); ok && len(authors) > 0 {
		switch a := authors[0].(type) {
		case string:
			d.Author = &a
		case map[string]interface{}:
			d.Author = stringField(a, "name")
		}
	}
	presets, _ := v.Expressions["preset"].(map[string]interface{})
	if presets == nil {
		presets = map[string]interface{}{}
	}
	d.Expressions = Expressions{Presets: presets}
	return d
}

func stringField(m map[string]interface{}, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}

// Bone is an entry of the VRM 0.0 humanBones list.
type Bone struct {
	Bone string `json:"bone"`
	Node *int   `json:"node"`
}

// humanBones accepts the 0.0 list form [{"bone": name, "node": n}]
// and the 1.0 map form {name: {"node": n}}.
func humanBones(v interface{}) map[string]int {
	bones := map[string]int{}
	switch b := v.(type) {
	case []interface{}:
		for _, e := range b {
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			var bone Bone
			if err := json.Unmarshal(data, &bone); err != nil || bone.Bone == "" || bone.Node == nil {
				continue
			}
			bones[bone.Bone] = *bone.Node
		}
	case map[string]interface{}:
		for name, e := range b {
			if bone, ok := e.(map[string]interface{}); ok {
				e = bone["node"]
			}
			if node, ok := toInt(e); ok {
				bones[name] = node
			}
		}
	}
	return bones
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return int(i), err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
