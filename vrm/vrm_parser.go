package vrm

import (
	"io"
	"log/slog"
	"os"

	"github.com/antonholmquist/jason"
	"github.com/binzume/vrmparser/glb"
	"github.com/binzume/vrmparser/scene"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

type Options struct {
	Scene *scene.AdapterOptions

	// Thumbnail enables thumbnail probing. Probe errors are logged, not returned.
	Thumbnail bool

	Logger *slog.Logger
}

// Result is everything parsed from one VRM file.
type Result struct {
	Document *scene.Document

	// Extensions is the reconciled extensions object of Document.
	Extensions map[string]interface{}

	Data     ExtensionData
	Metadata *Metadata
	Version  string

	// Degraded is set when the scene graph was built from the JSON chunk only.
	Degraded bool

	// Digest is the BLAKE3-256 hash of the source file.
	Digest [32]byte

	Thumbnail *Thumbnail
}

// LoadFile parses the VRM file at path.
func LoadFile(path string, options *Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "vrm")
	}
	return newLoader(options).load(data, func(a *scene.Adapter) (*scene.Document, error) {
		return a.Decode(path)
	})
}

// Load parses a VRM file held in memory. The scene decoder reads it from a
// temporary copy that is removed before Load returns.
func Load(data []byte, options *Options) (*Result, error) {
	return newLoader(options).load(data, func(a *scene.Adapter) (*scene.Document, error) {
		return a.DecodeBytes(data)
	})
}

type loader struct {
	options Options
	logger  *slog.Logger
}

func newLoader(options *Options) *loader {
	l := &loader{}
	if options != nil {
		l.options = *options
	}
	l.logger = l.options.Logger
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

func (l *loader) adapter() *scene.Adapter {
	var opts scene.AdapterOptions
	if l.options.Scene != nil {
		opts = *l.options.Scene
	}
	if opts.Logger == nil {
		opts.Logger = l.logger
	}
	return scene.NewAdapter(&opts)
}

func (l *loader) load(data []byte, decode func(*scene.Adapter) (*scene.Document, error)) (*Result, error) {
	c, err := glb.Read(data)
	if err != nil {
		return nil, err
	}
	gltfJSON, err := c.JSON()
	if err != nil {
		return nil, err
	}
	ext, err := ParseExtensions(jsonExtensions(gltfJSON))
	if err != nil {
		return nil, err
	}
	doc, err := decode(l.adapter())
	if err != nil {
		return nil, err
	}
	gltfVersion, _ := gltfJSON.GetString("asset", "version")

	r := &Result{
		Document:   doc,
		Extensions: scene.ReconcileExtensions(doc),
		Data:       ext,
		Metadata:   Normalize(ext, gltfVersion),
		Version:    ext.Version(),
		Degraded:   doc.Degraded,
		Digest:     blake3.Sum256(data),
	}
	if l.options.Thumbnail {
		r.Thumbnail, err = ProbeThumbnail(c, gltfJSON, ext)
		if err != nil {
			l.logger.Warn("thumbnail probe failed", "error", err)
		}
	}
	l.logger.Debug("vrm loaded", "version", r.Version, "degraded", r.Degraded, "profile", doc.Profile)
	return r, nil
}

func jsonExtensions(gltfJSON *jason.Object) map[string]interface{} {
	v, err := gltfJSON.GetValue("extensions")
	if err != nil {
		return map[string]interface{}{}
	}
	plain, err := glb.Plain(v)
	if err != nil {
		return map[string]interface{}{}
	}
	ext, _ := plain.(map[string]interface{})
	return ext
}
