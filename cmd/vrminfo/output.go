package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/binzume/vrmparser/vrm"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type report struct {
	File       string                 `json:"file"`
	Version    string                 `json:"version,omitempty"`
	Degraded   bool                   `json:"degraded"`
	Profile    string                 `json:"profile,omitempty"`
	Digest     string                 `json:"digest,omitempty"`
	Metadata   *vrm.Metadata          `json:"metadata,omitempty"`
	Thumbnail  *vrm.Thumbnail         `json:"thumbnail,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

func newReport(file string, r *vrm.Result, withExtensions bool) *report {
	rep := &report{
		File:      file,
		Version:   r.Version,
		Degraded:  r.Degraded,
		Profile:   r.Document.Profile,
		Digest:    hex.EncodeToString(r.Digest[:]),
		Metadata:  r.Metadata,
		Thumbnail: r.Thumbnail,
	}
	if withExtensions {
		rep.Extensions = r.Extensions
	}
	return rep
}

func checkFormat(format string) error {
	switch format {
	case "", "json", "yaml", "cbor":
		return nil
	}
	return errors.Errorf("unsupported format: %s", format)
}

func writeReports(w io.Writer, format string, reports []*report) error {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		v, err := generic(reports)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "cbor":
		v, err := generic(reports)
		if err != nil {
			return err
		}
		data, err := cbor.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return checkFormat(format)
}

// generic converts v to plain maps and slices using its JSON encoding.
func generic(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	err = json.Unmarshal(data, &out)
	return out, err
}
