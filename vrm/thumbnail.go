package vrm

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/antonholmquist/jason"
	"github.com/binzume/vrmparser/glb"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

// Thumbnail describes the model thumbnail image stored in the BIN chunk.
type Thumbnail struct {
	Image    int    `json:"image"`
	MimeType string `json:"mimeType"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// ThumbnailImage returns the glTF image index of the thumbnail, or -1.
func ThumbnailImage(data ExtensionData, gltfJSON *jason.Object) int {
	switch v := data.(type) {
	case *V0:
		// 0.0 refers to a texture
		tex, ok := toInt(v.Meta["texture"])
		if !ok || tex < 0 {
			return -1
		}
		textures, err := gltfJSON.GetObjectArray("textures")
		if err != nil || tex >= len(textures) {
			return -1
		}
		src, err := textures[tex].GetInt64("source")
		if err != nil {
			return -1
		}
		return int(src)
	case *V1:
		if img, ok := toInt(v.Meta["thumbnailImage"]); ok {
			return img
		}
	}
	return -1
}

// ProbeThumbnail reads the dimensions of the thumbnail image.
// It returns nil without error if the model has no thumbnail.
func ProbeThumbnail(c *glb.Container, gltfJSON *jason.Object, data ExtensionData) (*Thumbnail, error) {
	index := ThumbnailImage(data, gltfJSON)
	if index < 0 {
		return nil, nil
	}
	images, err := gltfJSON.GetObjectArray("images")
	if err != nil || index >= len(images) {
		return nil, errors.Errorf("vrm: thumbnail image %d not found", index)
	}
	img := images[index]
	mimeType, _ := img.GetString("mimeType")
	bv, err := img.GetInt64("bufferView")
	if err != nil {
		return nil, errors.Errorf("vrm: thumbnail image %d has no bufferView", index)
	}
	src, err := bufferViewData(c, gltfJSON, int(bv))
	if err != nil {
		return nil, err
	}
	conf, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrapf(err, "vrm: thumbnail image %d", index)
	}
	return &Thumbnail{Image: index, MimeType: mimeType, Format: format, Width: conf.Width, Height: conf.Height}, nil
}

// bufferViewData slices a bufferView out of the first BIN chunk.
func bufferViewData(c *glb.Container, gltfJSON *jason.Object, index int) ([]byte, error) {
	views, err := gltfJSON.GetObjectArray("bufferViews")
	if err != nil || index < 0 || index >= len(views) {
		return nil, errors.Errorf("vrm: bufferView %d not found", index)
	}
	view := views[index]
	if buf, _ := view.GetInt64("buffer"); buf != 0 {
		return nil, errors.Errorf("vrm: bufferView %d is not in the GLB buffer", index)
	}
	offset, _ := view.GetInt64("byteOffset")
	length, err := view.GetInt64("byteLength")
	if err != nil {
		return nil, errors.Errorf("vrm: bufferView %d has no byteLength", index)
	}
	bins, err := c.BinaryChunks()
	if err != nil {
		return nil, err
	}
	if len(bins) == 0 {
		return nil, errors.New("vrm: no BIN chunk")
	}
	bin := bins[0].Data
	size := int64(len(bin))
	if offset < 0 || length < 0 || offset > size || length > size-offset {
		return nil, errors.Errorf("vrm: bufferView %d out of range", index)
	}
	return bin[offset : offset+length], nil
}
