package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnet/classifiers"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "convnet "+version+"\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "Commands:")

	out.Reset()
	assert.EqualError(t, run([]string{"train"}, &out), `unknown command "train"`)
}

func TestRun_Sanity(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"sanity", "-n", "2", "-reg", "0.1", "-seed", "3"}, &out))
	assert.Contains(t, out.String(), "Initial loss (no regularization): 2.30")
	assert.Contains(t, out.String(), "Initial loss (reg 0.1):")

	assert.Error(t, run([]string{"sanity", "-n", "0"}, &out))
	assert.Error(t, run([]string{"sanity", "-bogus"}, &out))
}

func TestRun_SanitySave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.safetensors")

	var out bytes.Buffer
	require.NoError(t, run([]string{"sanity", "-n", "1", "-o", path}, &out))
	assert.Contains(t, out.String(), "Parameters written to "+path)

	net, err := classifiers.New(classifiers.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, net.LoadFile(path))
}

func TestRun_Check(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"check", "-seed", "1"}, &out))
	for _, k := range []string{"W1", "b1", "W2", "b2", "W3", "b3"} {
		assert.Contains(t, out.String(), k+" max relative error:")
	}
}
