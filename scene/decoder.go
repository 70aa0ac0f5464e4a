package scene

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// Decoder decodes the glTF document at path using the given profile.
type Decoder interface {
	Decode(path string, p Profile) (*gltf.Document, error)
}

// GLTFDecoder decodes documents with github.com/qmuntal/gltf.
type GLTFDecoder struct{}

func (GLTFDecoder) Decode(path string, p Profile) (*gltf.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fsys fs.FS = os.DirFS(filepath.Dir(path))
	if !p.LoadBuffers {
		fsys = skipResources{}
	}
	var doc gltf.Document
	if err := gltf.NewDecoderFS(f, fsys).Decode(&doc); err != nil {
		return nil, err
	}
	if !p.LoadBuffers {
		for _, b := range doc.Buffers {
			b.Data = nil
		}
	}
	if p.LoadImages {
		if err := checkImages(&doc, filepath.Dir(path)); err != nil {
			return nil, err
		}
	}
	if p.Validate {
		if err := Validate(&doc); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

// skipResources leaves external buffers unread. Every name opens as an empty file.
type skipResources struct{}

func (skipResources) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return &emptyFile{name: filepath.Base(name)}, nil
}

type emptyFile struct {
	bytes.Reader
	name string
}

func (f *emptyFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *emptyFile) Close() error               { return nil }
func (f *emptyFile) Name() string               { return f.name }
func (f *emptyFile) Size() int64                { return 0 }
func (f *emptyFile) Mode() fs.FileMode          { return 0o444 }
func (f *emptyFile) ModTime() time.Time         { return time.Time{} }
func (f *emptyFile) IsDir() bool                { return false }
func (f *emptyFile) Sys() interface{}           { return nil }

// checkImages makes sure external images can be opened. Image data is never kept.
func checkImages(doc *gltf.Document, dir string) error {
	for i, img := range doc.Images {
		if img.BufferView != nil || img.URI == "" || strings.HasPrefix(img.URI, "data:") {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(img.URI))); err != nil {
			return errors.Wrapf(err, "image %d", i)
		}
	}
	return nil
}

// Validate checks that every index in doc refers to an existing element.
func Validate(doc *gltf.Document) error {
	if doc.Asset.Version == "" {
		return errors.New("gltf: asset.version is empty")
	}
	check := func(what string, idx uint32, n int) error {
		if int(idx) >= n {
			return errors.Errorf("gltf: %s index %d out of range (%d)", what, idx, n)
		}
		return nil
	}
	if doc.Scene != nil {
		if err := check("scene", *doc.Scene, len(doc.Scenes)); err != nil {
			return err
		}
	}
	for _, s := range doc.Scenes {
		for _, n := range s.Nodes {
			if err := check("scene node", n, len(doc.Nodes)); err != nil {
				return err
			}
		}
	}
	for i, node := range doc.Nodes {
		if node.Mesh != nil {
			if err := check(fmt.Sprintf("node[%d] mesh", i), *node.Mesh, len(doc.Meshes)); err != nil {
				return err
			}
		}
		if node.Skin != nil {
			if err := check(fmt.Sprintf("node[%d] skin", i), *node.Skin, len(doc.Skins)); err != nil {
				return err
			}
		}
		for _, c := range node.Children {
			if err := check(fmt.Sprintf("node[%d] child", i), c, len(doc.Nodes)); err != nil {
				return err
			}
		}
	}
	for i, mesh := range doc.Meshes {
		for _, p := range mesh.Primitives {
			if p.Material != nil {
				if err := check(fmt.Sprintf("mesh[%d] material", i), *p.Material, len(doc.Materials)); err != nil {
					return err
				}
			}
			if p.Indices != nil {
				if err := check(fmt.Sprintf("mesh[%d] indices", i), *p.Indices, len(doc.Accessors)); err != nil {
					return err
				}
			}
			for _, a := range p.Attributes {
				if err := check(fmt.Sprintf("mesh[%d] attribute", i), a, len(doc.Accessors)); err != nil {
					return err
				}
			}
		}
	}
	for i, skin := range doc.Skins {
		for _, j := range skin.Joints {
			if err := check(fmt.Sprintf("skin[%d] joint", i), j, len(doc.Nodes)); err != nil {
				return err
			}
		}
	}
	for i, tex := range doc.Textures {
		if tex.Source != nil {
			if err := check(fmt.Sprintf("texture[%d] source", i), *tex.Source, len(doc.Images)); err != nil {
				return err
			}
		}
	}
	for i, img := range doc.Images {
		if img.BufferView != nil {
			if err := check(fmt.Sprintf("image[%d] bufferView", i), *img.BufferView, len(doc.BufferViews)); err != nil {
				return err
			}
		}
	}
	for i, acr := range doc.Accessors {
		if acr.BufferView != nil {
			if err := check(fmt.Sprintf("accessor[%d] bufferView", i), *acr.BufferView, len(doc.BufferViews)); err != nil {
				return err
			}
		}
	}
	for i, bv := range doc.BufferViews {
		if err := check(fmt.Sprintf("bufferView[%d] buffer", i), bv.Buffer, len(doc.Buffers)); err != nil {
			return err
		}
	}
	return nil
}
