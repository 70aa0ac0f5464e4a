package scene

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/vrmparser/glb"
	"github.com/pkg/errors"
)

var ErrDecodeAttemptsExhausted = errors.New("scene: all decode attempts failed")

// ExhaustedError is returned when every profile failed and the JSON chunk
// could not be read for a degraded document either.
type ExhaustedError struct {
	Attempts []Attempt
	Fallback error
}

func (e *ExhaustedError) Error() string {
	var s []string
	for _, a := range e.Attempts {
		s = append(s, fmt.Sprintf("%s: %v", a.Profile, a.Err))
	}
	return fmt.Sprintf("%v [%s] fallback: %v", ErrDecodeAttemptsExhausted, strings.Join(s, "; "), e.Fallback)
}

// Last returns the error of the last structured decode attempt.
func (e *ExhaustedError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last()
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrDecodeAttemptsExhausted
}

type AdapterOptions struct {
	Decoder  Decoder
	Profiles []Profile
	Logger   *slog.Logger
}

// Adapter tries each profile in order and falls back to a degraded
// document built from the JSON chunk.
type Adapter struct {
	decoder  Decoder
	profiles []Profile
	logger   *slog.Logger
}

func NewAdapter(options *AdapterOptions) *Adapter {
	if options == nil {
		options = &AdapterOptions{}
	}
	a := &Adapter{decoder: options.Decoder, profiles: options.Profiles, logger: options.Logger}
	if a.decoder == nil {
		a.decoder = GLTFDecoder{}
	}
	if len(a.profiles) == 0 {
		a.profiles = DefaultProfiles()
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a
}

// Decode decodes the file at path. The first successful profile wins.
func (a *Adapter) Decode(path string) (*Document, error) {
	var attempts []Attempt
	for _, p := range a.profiles {
		doc, err := a.decoder.Decode(path, p)
		if err == nil {
			var d *Document
			d, err = newDocument(doc)
			if err == nil {
				attempts = append(attempts, Attempt{Profile: p.Name})
				a.logger.Debug("scene decoded", "path", path, "profile", p.Name)
				d.Profile = p.Name
				d.Attempts = attempts
				return d, nil
			}
		}
		attempts = append(attempts, Attempt{Profile: p.Name, Err: err})
		a.logger.Debug("scene decode failed", "path", path, "profile", p.Name, "error", err)
	}

	c, err := glb.ReadFile(path)
	if err == nil {
		obj, jerr := c.JSON()
		if jerr == nil {
			d := FromJSON(obj)
			d.Attempts = attempts
			a.logger.Warn("scene decoded in degraded mode", "path", path, "attempts", len(attempts))
			return d, nil
		}
		err = jerr
	}
	return nil, &ExhaustedError{Attempts: attempts, Fallback: err}
}

// DecodeBytes extracts data to a scratch directory and decodes it from there.
func (a *Adapter) DecodeBytes(data []byte) (*Document, error) {
	path, cleanup, err := ExtractTemp(data, "model.glb")
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return a.Decode(path)
}

// ExtractTemp writes data into a new temporary directory.
// cleanup removes the directory and must be called on every path.
func ExtractTemp(data []byte, name string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "vrmparser")
	if err != nil {
		return "", nil, errors.Wrap(err, "scratch dir")
	}
	cleanup := func() { os.RemoveAll(dir) }
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, "scratch file")
	}
	return path, cleanup, nil
}
