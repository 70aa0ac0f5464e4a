package vrm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/binzume/vrmparser/glb"
	"github.com/binzume/vrmparser/scene"
	"github.com/qmuntal/gltf"
)

const v0JSON = `{
	"asset": {"version": "2.0"},
	"nodes": [{"name": "hips"}, {"name": "head"}],
	"scenes": [{"nodes": [0]}],
	"extensionsUsed": ["VRM"],
	"extensions": {"VRM": {
		"meta": {"title": "T", "author": "A"},
		"humanoid": {"humanBones": [{"bone": "hips", "node": 0}, {"bone": "head", "node": 1}]}
	}}
}`

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.vrm")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

type failingDecoder struct{}

func (failingDecoder) Decode(path string, p scene.Profile) (*gltf.Document, error) {
	return nil, errors.New("unsupported")
}

func TestLoadFileV0(t *testing.T) {
	r, err := LoadFile(writeFile(t, glb.Bytes([]byte(v0JSON))), nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != "0.0" || r.Degraded {
		t.Error("unexpected result", r.Version, r.Degraded)
	}
	if _, ok := r.Data.(*V0); !ok {
		t.Errorf("expected *V0, got %T", r.Data)
	}
	if r.Document.GLTF == nil || len(r.Document.GLTF.Nodes) != 2 {
		t.Error("scene document not decoded")
	}
	if _, ok := r.Extensions["VRM"]; !ok {
		t.Error("reconciled extensions missing VRM", r.Extensions)
	}
	if *r.Metadata.Title != "T" || *r.Metadata.Author != "A" || r.Metadata.HumanoidBones["head"] != 1 {
		t.Error("metadata", r.Metadata.Details)
	}
	if r.Digest == [32]byte{} {
		t.Error("digest not set")
	}
}

func TestLoadIdempotent(t *testing.T) {
	data := glb.Bytes([]byte(v0JSON))
	var prev []byte
	for i := 0; i < 2; i++ {
		r, err := Load(data, nil)
		if err != nil {
			t.Fatal(err)
		}
		b, err := json.Marshal(r.Metadata)
		if err != nil {
			t.Fatal(err)
		}
		if prev != nil && !bytes.Equal(prev, b) {
			t.Errorf("metadata differs:\n%s\n%s", prev, b)
		}
		prev = b
	}
}

func TestLoadDegraded(t *testing.T) {
	opts := &Options{Scene: &scene.AdapterOptions{Decoder: failingDecoder{}}}
	r, err := Load(glb.Bytes([]byte(v0JSON)), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Degraded || !r.Document.Degraded {
		t.Error("expected degraded result")
	}
	if len(r.Document.Attempts) != 3 {
		t.Error("attempts", r.Document.Attempts)
	}
	if len(r.Document.Array("nodes")) != 2 {
		t.Error("nodes", r.Document.Fields)
	}
	if _, ok := r.Document.Fields["scenes"]; ok {
		t.Error("scenes must not be copied in degraded mode")
	}
	if r.Version != "0.0" || *r.Metadata.Title != "T" {
		t.Error("metadata should not depend on the scene decoder", r.Metadata)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.vrm"), nil); !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected not exist", err)
	}
	if _, err := Load([]byte("glTF"), nil); !errors.Is(err, glb.ErrTooShort) {
		t.Error("expected ErrTooShort", err)
	}
	if _, err := Load(glb.Bytes([]byte(`{"asset":`)), nil); !errors.Is(err, glb.ErrInvalidJSON) {
		t.Error("expected ErrInvalidJSON", err)
	}
	if _, err := Load(glb.Bytes([]byte(`{"asset":{"version":"2.0"}}`)), nil); !errors.Is(err, ErrNoVRMExtension) {
		t.Error("expected ErrNoVRMExtension", err)
	}
}

func TestLoadV1(t *testing.T) {
	js := `{
		"asset": {"version": "2.0"},
		"extensions": {
			"VRM": {"meta": {"title": "old"}},
			"VRMC_vrm": {"specVersion": "1.0", "meta": {"name": "N", "authors": [{"name": "A1"}, {"name": "A2"}]}}
		}
	}`
	r, err := Load(glb.Bytes([]byte(js)), nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != "1.0" || r.Metadata.Version != "1.0" {
		t.Error("VRMC_vrm should take precedence", r.Version)
	}
	if *r.Metadata.Author != "A1" {
		t.Error("author", *r.Metadata.Author)
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	img := testPNG(t, 16, 8)
	js := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": %d}],
		"images": [{"bufferView": 0, "mimeType": "image/png"}],
		"textures": [{"source": 0}],
		"extensions": {"VRM": {"meta": {"title": "T", "texture": 0}}}
	}`, len(img), len(img))
	r, err := Load(glb.Bytes([]byte(js), img), &Options{Thumbnail: true})
	if err != nil {
		t.Fatal(err)
	}
	th := r.Thumbnail
	if th == nil {
		t.Fatal("thumbnail not found")
	}
	if th.Image != 0 || th.Format != "png" || th.MimeType != "image/png" || th.Width != 16 || th.Height != 8 {
		t.Error("unexpected thumbnail", th)
	}

	// 1.0 refers to the image directly
	js = fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteLength": %d}],
		"images": [{"bufferView": 0, "mimeType": "image/png"}],
		"extensions": {"VRMC_vrm": {"meta": {"thumbnailImage": 0}}}
	}`, len(img), len(img))
	r, err = Load(glb.Bytes([]byte(js), img), &Options{Thumbnail: true})
	if err != nil {
		t.Fatal(err)
	}
	if r.Thumbnail == nil || r.Thumbnail.Width != 16 {
		t.Error("unexpected thumbnail", r.Thumbnail)
	}
}

func TestThumbnailMissing(t *testing.T) {
	js := `{
		"asset": {"version": "2.0"},
		"extensions": {"VRM": {"meta": {"title": "T", "texture": 4}}}
	}`
	r, err := Load(glb.Bytes([]byte(js)), &Options{Thumbnail: true})
	if err != nil {
		t.Fatal("thumbnail errors must not fail the load", err)
	}
	if r.Thumbnail != nil {
		t.Error("unexpected thumbnail", r.Thumbnail)
	}
}

func TestThumbnailBufferViewOutOfRange(t *testing.T) {
	bin := make([]byte, 8)
	for _, view := range []string{
		`{"byteOffset": 4611686018427387904, "byteLength": 4611686018427387904}`,
		`{"byteOffset": 9223372036854775807, "byteLength": 1}`,
		`{"byteOffset": 4, "byteLength": 5}`,
		`{"byteOffset": 9, "byteLength": 0}`,
		`{"byteOffset": -1, "byteLength": 2}`,
	} {
		js := `{
			"asset": {"version": "2.0"},
			"bufferViews": [` + view + `],
			"images": [{"bufferView": 0, "mimeType": "image/png"}],
			"extensions": {"VRMC_vrm": {"meta": {"thumbnailImage": 0}}}
		}`
		c, err := glb.Read(glb.Bytes([]byte(js), bin))
		if err != nil {
			t.Fatal(err)
		}
		obj, err := c.JSON()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ProbeThumbnail(c, obj, &V1{Meta: map[string]interface{}{"thumbnailImage": json.Number("0")}}); err == nil {
			t.Error("expected out of range error", view)
		}

		r, err := Load(glb.Bytes([]byte(js), bin), &Options{Thumbnail: true})
		if err != nil {
			t.Fatal(view, err)
		}
		if r.Thumbnail != nil {
			t.Error("unexpected thumbnail", view, r.Thumbnail)
		}
	}
}
