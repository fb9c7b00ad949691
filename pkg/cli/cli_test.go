package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/payload"
)

const cloudConfig = "#cloud-config\npackages:\n  - nginx\nruncmd:\n  - echo \"hello\"\n"

// runCLI executes the command tree in an isolated home and working
// directory and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{name}, args...),
		strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

// isolate points HOME and the working directory at fresh temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEscape_DefaultSource(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "userdata.txt", "line1\nline2\"with quotes\"")

	out, err := runCLI(t, "")
	require.NoError(t, err)
	assert.Equal(t, `"line1\nline2\"with quotes\""`+"\n", out)

	out, err = runCLI(t, "", "escape")
	require.NoError(t, err)
	assert.Equal(t, `"line1\nline2\"with quotes\""`+"\n", out)
}

func TestEscape_MissingSource(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "")
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	assert.Empty(t, out, "nothing is printed on failure")
	assert.Equal(t, ExitError, ExitCode(err))
}

func TestEscape_MultipleSourcesInOrder(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.txt", "first")
	b := writeFile(t, dir, "b.txt", "second\n")

	out, err := runCLI(t, "third", b, "-", a)
	require.NoError(t, err)
	assert.Equal(t, "\"second\\n\"\n\"third\"\n\"first\"\n", out)
}

func TestEscape_StdinBetweenSources(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.txt", "first")
	b := writeFile(t, dir, "b.txt", "second")

	out, err := runCLI(t, "third", "escape", "--verify", b, "-", a)
	require.NoError(t, err)
	assert.Equal(t, "\"second\"\n\"third\"\n\"first\"\n", out)

	out, err = runCLI(t, "third", "escape", "--format", "json", "-", a)
	require.NoError(t, err)
	var results []EscapeResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "-", results[0].Source)
	assert.Equal(t, `"third"`, results[0].Escaped)
	assert.Equal(t, a, results[1].Source)
}

func TestEscape_OneMissingSourcePrintsNothing(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.txt", "first")

	out, err := runCLI(t, "", a, filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestEscape_Options(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.txt", "café <b>")

	out, err := runCLI(t, "", src)
	require.NoError(t, err)
	assert.Equal(t, `"caf\u00e9 <b>"`+"\n", out)

	out, err = runCLI(t, "", "escape", "--ascii=false", "--escape-html", "--verify", src)
	require.NoError(t, err)
	assert.Equal(t, `"café \u003cb\u003e"`+"\n", out)
}

func TestEscape_JSONFormat(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.yaml", cloudConfig)

	out, err := runCLI(t, "", "escape", "--format", "json", src)
	require.NoError(t, err)

	var res EscapeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, src, res.Source)
	assert.Equal(t, len(cloudConfig), res.Bytes)

	var decoded string
	require.NoError(t, json.Unmarshal([]byte(res.Escaped), &decoded))
	assert.Equal(t, cloudConfig, decoded)
}

func TestEscape_OutputFile(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.txt", "a\tb")
	dst := filepath.Join(dir, "out.txt")

	out, err := runCLI(t, "", "escape", "-o", dst, src)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, `"a\tb"`+"\n", string(data))
}

func TestEscape_OutputUnwritable(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.txt", "x")

	tests := []struct {
		name   string
		output string
		code   cnserrors.ErrorCode
	}{
		{name: "missing directory", output: filepath.Join(dir, "nope", "x.json"), code: cnserrors.ErrCodeNotFound},
		{name: "configmap without name", output: "cm://only-namespace", code: cnserrors.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "", "escape", "--output", tt.output, src)
			require.Error(t, err)
			assert.Equal(t, tt.code, cnserrors.CodeOf(err))
			assert.Equal(t, ExitError, ExitCode(err))
			assert.Empty(t, out)
		})
	}
}

func TestEscape_LineEndings(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "dos.txt", "a\r\nb\r\n")

	out, err := runCLI(t, "", src)
	require.NoError(t, err)
	assert.Equal(t, `"a\nb\n"`+"\n", out)

	out, err = runCLI(t, "", "--keep-cr", src)
	require.NoError(t, err)
	assert.Equal(t, `"a\r\nb\r\n"`+"\n", out)
}

func TestEscape_Encoding(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "latin1.txt", "caf\xe9")

	_, err := runCLI(t, "", src)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeEncoding, cnserrors.CodeOf(err))

	out, err := runCLI(t, "", "escape", "--encoding", "latin1", src)
	require.NoError(t, err)
	assert.Equal(t, `"caf\u00e9"`+"\n", out)
}

func TestEscape_InvalidFormat(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "userdata.txt", "x")

	_, err := runCLI(t, "", "escape", "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "custom.txt", "é")
	cfg := writeFile(t, dir, "udjson.yaml", "source: custom.txt\nescape:\n  ascii: false\n")

	out, err := runCLI(t, "", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "\"é\"\n", out)

	// flag beats config
	out, err = runCLI(t, "", "--config", cfg, "escape", "--ascii=true")
	require.NoError(t, err)
	assert.Equal(t, `"\u00e9"`+"\n", out)

	_, err = runCLI(t, "", "--config", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to load config")
}

func TestUnescape(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, `"line1\nline2\"q\" é"`+"\n", "unescape")
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\"q\" é", out)

	_, err = runCLI(t, "not a literal", "unescape")
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
}

func TestInspect(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "good.yaml", cloudConfig)
	bad := writeFile(t, dir, "bad.yaml", "#cloud-config\n- a\n- b\n")

	out, err := runCLI(t, "", "inspect", good)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cloud-config: valid,"), out)

	out, err = runCLI(t, "", "inspect", bad)
	require.NoError(t, err, "problems are reported, not failures")
	assert.Contains(t, out, "cloud-config: invalid")
	assert.Contains(t, out, "problem:")

	_, err = runCLI(t, "", "inspect", "--strict", bad)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))

	_, err = runCLI(t, "", "inspect", good, bad)
	assert.ErrorContains(t, err, "at most one source")
}

func TestPayload(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.yaml", cloudConfig)

	out, err := runCLI(t, "", "payload",
		"--name", "web-1", "--image", "ubuntu-24.04", "--flavour", "m1.small",
		"--security-group", "default", "--security-group", "web",
		"--metadata", "role=web", src)
	require.NoError(t, err)

	var req payload.InstanceRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "web-1", req.Name)
	assert.Equal(t, "ubuntu-24.04", req.ImageID)
	assert.Equal(t, "m1.small", req.FlavourID)
	assert.Equal(t, []string{"default", "web"}, req.SecurityGroups)
	assert.Equal(t, "web", req.Metadata["role"])
	assert.Equal(t, cloudConfig, req.UserData())
	assert.Contains(t, out, `"bootCommand": ""`)
}

func TestPayload_BootCommandAndRequestFile(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "boot.sh", "#!/bin/sh\necho hi\n")
	base := writeFile(t, dir, "base.yaml", "name: base\nimageId: img\nflavourId: small\nsecurityGroups: [default]\n")

	out, err := runCLI(t, "", "payload", "--request", base, "--name", "web-2", "--boot-command", src)
	require.NoError(t, err)

	var req payload.InstanceRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "web-2", req.Name)
	assert.Equal(t, "img", req.ImageID)
	assert.Equal(t, []string{"default"}, req.SecurityGroups)
	assert.Equal(t, "#!/bin/sh\necho hi\n", req.BootCommand)
	assert.Empty(t, req.UserData())
}

func TestPayload_Invalid(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.yaml", cloudConfig)

	out, err := runCLI(t, "", "payload", "--image", "img", "--flavour", "small", src)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
	assert.Contains(t, err.Error(), `"name"`)
	assert.Empty(t, out)

	_, err = runCLI(t, "", "payload", "--name", "n", "--image", "i", "--flavour", "f",
		"--metadata", "broken", src)
	assert.ErrorContains(t, err, "--metadata")
}

func TestSubmit(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.yaml", cloudConfig)

	var got payload.InstanceRequest
	var gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-auth-token")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"inst-42"}`))
	}))
	defer ts.Close()

	out, err := runCLI(t, "", "submit",
		"--endpoint", ts.URL, "--auth-token", "s3cret",
		"--name", "web-1", "--image", "img", "--flavour", "small", src)
	require.NoError(t, err)
	assert.Equal(t, "inst-42\n", out)
	assert.Equal(t, "s3cret", gotToken)
	assert.Equal(t, cloudConfig, got.UserData())
}

func TestSubmit_OutputUnwritableSkipsRequest(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.yaml", cloudConfig)

	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"inst-1"}`))
	}))
	defer ts.Close()

	_, err := runCLI(t, "", "submit", "--endpoint", ts.URL,
		"--output", filepath.Join(dir, "nope", "id.txt"),
		"--name", "web-1", "--image", "img", "--flavour", "small", src)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	assert.False(t, called, "no instance is created when the output cannot be opened")
}

func TestSubmit_ProviderError(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "u.yaml", cloudConfig)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
	}))
	defer ts.Close()

	out, err := runCLI(t, "", "submit", "--endpoint", ts.URL,
		"--name", "web-1", "--image", "img", "--flavour", "small", src)
	require.Error(t, err)
	assert.Equal(t, cnserrors.ErrCodeUnauthorized, cnserrors.CodeOf(err))
	assert.Empty(t, out)
}

func TestVersionFlag(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, name)
	assert.Contains(t, out, version)
}
