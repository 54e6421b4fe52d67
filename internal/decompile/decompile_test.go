package decompile

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestNewExec(t *testing.T) {
	x, err := NewExec("java -jar cfr.jar {file}")
	require.NoError(t, err)
	assert.Equal(t, []string{"java", "-jar", "cfr.jar", "{file}"}, x.Args)

	x, err = NewExec("procyon")
	require.NoError(t, err)
	assert.Equal(t, []string{"procyon", "{file}"}, x.Args)

	_, err = NewExec("   ")
	assert.ErrorIs(t, err, ErrNoDecompiler)
}

func TestExecCapturesStdout(t *testing.T) {
	requireTool(t, "cat")
	x, err := NewExec("cat {file}")
	require.NoError(t, err)
	out, err := x.Decompile(context.Background(), "a/b/App.class", []byte(`String password = "s3cret";`))
	require.NoError(t, err)
	assert.Equal(t, `String password = "s3cret";`, out)
}

func TestExecFailures(t *testing.T) {
	requireTool(t, "false")
	requireTool(t, "true")

	x, _ := NewExec("false")
	_, err := x.Decompile(context.Background(), "App.class", []byte{0xca, 0xfe})
	assert.ErrorIs(t, err, ErrDecompileFailed)

	x, _ = NewExec("true")
	_, err = x.Decompile(context.Background(), "App.class", []byte{0xca, 0xfe})
	assert.ErrorIs(t, err, ErrDecompileFailed)
	assert.Contains(t, err.Error(), "empty output")
}

func TestAvailable(t *testing.T) {
	x, _ := NewExec("sensigrep-no-such-decompiler-xyz")
	assert.ErrorIs(t, x.Available(), ErrNoDecompiler)
}
