package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/binzume/vrmparser/glb"
	"github.com/fxamacker/cbor/v2"
	yaml "gopkg.in/yaml.v2"
)

const testJSON = `{
	"asset": {"version": "2.0"},
	"extensions": {"VRM": {"meta": {"title": "T", "author": "A"}}}
}`

func writeInput(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunJSON(t *testing.T) {
	input := writeInput(t, t.TempDir(), "a.vrm", glb.Bytes([]byte(testJSON)))
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--extensions", input}, &stdout, &stderr); err != nil {
		t.Fatal(err, stderr.String())
	}
	var reports []map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &reports); err != nil {
		t.Fatal(err, stdout.String())
	}
	if len(reports) != 1 {
		t.Fatal("expected one report", reports)
	}
	meta := reports[0]["metadata"].(map[string]interface{})
	if meta["title"] != "T" || meta["version"] != "0.0" {
		t.Error("unexpected metadata", meta)
	}
	if _, ok := reports[0]["extensions"]; !ok {
		t.Error("extensions missing")
	}
}

func TestRunFormats(t *testing.T) {
	input := writeInput(t, t.TempDir(), "a.vrm", glb.Bytes([]byte(testJSON)))

	var stdout bytes.Buffer
	if err := run([]string{"-f", "yaml", input}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	var y []map[string]interface{}
	if err := yaml.Unmarshal(stdout.Bytes(), &y); err != nil || len(y) != 1 {
		t.Fatal("yaml", err, stdout.String())
	}

	stdout.Reset()
	if err := run([]string{"--format", "cbor", input}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	var c []interface{}
	if err := cbor.Unmarshal(stdout.Bytes(), &c); err != nil || len(c) != 1 {
		t.Fatal("cbor", err)
	}

	stdout.Reset()
	var stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.vrm")
	err := run([]string{"--format", "xml", input, missing}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Error("expected unsupported format", err)
	}
	if stdout.Len() != 0 || strings.Contains(stderr.String(), "parse failed") {
		t.Error("inputs should not be parsed with a bad format", stdout.String(), stderr.String())
	}
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "a.vrm", glb.Bytes([]byte(testJSON)))
	conf := writeInput(t, dir, "conf.yaml", []byte("format: yaml\nprofiles: [no_buffers]\n"))

	var stdout bytes.Buffer
	if err := run([]string{"-c", conf, input}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "profile: no_buffers") {
		t.Error("config not applied", stdout.String())
	}

	bad := writeInput(t, dir, "bad.yaml", []byte("profiles: [fast]\n"))
	if err := run([]string{"-c", bad, input}, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("expected unknown profile error")
	}
	unknown := writeInput(t, dir, "unknown.yaml", []byte("colour: red\n"))
	if err := run([]string{"-c", unknown, input}, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("expected unknown field error")
	}
}

func TestRunFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeInput(t, dir, "a.vrm", glb.Bytes([]byte(testJSON)))
	bad := writeInput(t, dir, "b.vrm", []byte("not a vrm file"))

	var stdout bytes.Buffer
	err := run([]string{good, bad}, &stdout, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error")
	}
	var reports []map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &reports); err != nil || len(reports) != 2 {
		t.Fatal(err, stdout.String())
	}
	if _, ok := reports[1]["error"]; !ok {
		t.Error("error not reported", reports[1])
	}

	if err := run(nil, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("expected error without inputs")
	}
}
