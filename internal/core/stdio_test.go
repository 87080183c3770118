package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xint-dev/xint/internal/common/cnst"
)

func TestRunStdio_RoundTrip(t *testing.T) {
	env := newTestEnv(t, cnst.PolicyReadOnly, 0)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		``,
		`   `,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{oops`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"xint_tweet","arguments":{"tweet_id":"99"}}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, env.server.RunStdio(context.Background(), strings.NewReader(in), &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	var initReply rpcReply
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &initReply))
	assert.Equal(t, "1", string(initReply.ID))
	assert.Nil(t, initReply.Error)

	var parseErr map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &parseErr))
	assert.NotContains(t, parseErr, "id")
	errObj := parseErr["error"].(map[string]any)
	assert.Equal(t, float64(-32603), errObj["code"])
	assert.True(t, strings.HasPrefix(errObj["message"].(string), "Failed to parse JSON: "))

	var call rpcReply
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &call))
	assert.Equal(t, "2", string(call.ID))
	assert.Equal(t, "Tweet: 99", toolText(t, call))
}

func TestRunStdio_LastLineWithoutNewline(t *testing.T) {
	env := newTestEnv(t, cnst.PolicyReadOnly, 0)
	var out bytes.Buffer
	require.NoError(t, env.server.RunStdio(context.Background(),
		strings.NewReader(`{"jsonrpc":"2.0","id":"a","method":"ping"}`), &out))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"a","result":{}}`, strings.TrimSpace(out.String()))
}

func TestRunStdio_ContextCanceled(t *testing.T) {
	env := newTestEnv(t, cnst.PolicyReadOnly, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := env.server.RunStdio(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRunStdio_WriteError(t *testing.T) {
	env := newTestEnv(t, cnst.PolicyReadOnly, 0)
	err := env.server.RunStdio(context.Background(),
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
