package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dserrors "github.com/systmms/dskeyring/internal/errors"
)

func TestSetCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{name: "flag", args: []string{"svc", "acct", "--password", "from-flag"}, want: "from-flag"},
		{name: "pipe", stdin: "from-pipe\n", args: []string{"svc", "acct"}, want: "from-pipe"},
		{name: "pipe_crlf", stdin: "from-pipe\r\n", args: []string{"svc", "acct"}, want: "from-pipe"},
		{name: "pipe_keeps_inner_newlines", stdin: "line1\nline2\n", args: []string{"svc", "acct"}, want: "line1\nline2"},
		{name: "unicode", stdin: "pässwörd ✓", args: []string{"svc", "acct"}, want: "pässwörd ✓"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			_, err := execute(t, NewSetCommand(env.rt), tt.stdin, tt.args...)
			require.NoError(t, err)

			got, err := env.store.GetPassword("svc", "acct")
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Contains(t, env.logs.String(), "Stored password for svc/acct")
		})
	}
}

func TestSetCommandEmptyPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := execute(t, NewSetCommand(env.rt), "\n", "svc", "acct")

	var userErr dserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "cannot be empty")
	assert.Zero(t, env.store.Len())
}

func TestSetCommandOverwrites(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := execute(t, NewSetCommand(env.rt), "", "svc", "acct", "--password", "one")
	require.NoError(t, err)
	_, err = execute(t, NewSetCommand(env.rt), "", "svc", "acct", "--password", "two")
	require.NoError(t, err)

	got, err := env.store.GetPassword("svc", "acct")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
	assert.Equal(t, 1, env.store.Len())
}
