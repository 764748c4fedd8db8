package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnv(t *testing.T) {
	env := mapLookup(map[string]string{
		"REMOTE_HOST": "nas.local",
		"REMOTE_USER": "media",
		"EMPTY":       "",
	})

	tests := []struct {
		name        string
		in          string
		want        string
		wantMissing []string
	}{
		{"plain", `host = "${REMOTE_HOST}"`, `host = "nas.local"`, nil},
		{"empty value kept", `x = "${EMPTY}"`, `x = ""`, nil},
		{"missing", `host = "${NOPE}"`, `host = "${NOPE}"`, []string{"NOPE"}},
		{"default when unset", `port = ${PORT:-22}`, `port = 22`, nil},
		{"default when empty", `x = "${EMPTY:-fallback}"`, `x = "fallback"`, nil},
		{"default ignored when set", `user = "${REMOTE_USER:-root}"`, `user = "media"`, nil},
		{"required present", `user = "${REMOTE_USER:?set the remote user}"`, `user = "media"`, nil},
		{
			"required empty",
			`x = "${EMPTY:?set EMPTY}"`,
			`x = "${EMPTY:?set EMPTY}"`,
			[]string{"EMPTY: set EMPTY"},
		},
		{
			"several",
			`${REMOTE_USER}@${NOPE} ${EMPTY:-three} ${ALSO_NOPE}`,
			`media@${NOPE} three ${ALSO_NOPE}`,
			[]string{"NOPE", "ALSO_NOPE"},
		},
		{"not a reference", `path = "$HOME/x"`, `path = "$HOME/x"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := substituteEnv(tt.in, env)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}

func TestFirstOf(t *testing.T) {
	lookup := firstOf(
		mapLookup(map[string]string{"A": "process", "EMPTY": ""}),
		mapLookup(map[string]string{"A": "dotenv", "B": "dotenv", "EMPTY": "dotenv"}),
	)

	v, ok := lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "process", v)

	v, _ = lookup("B")
	assert.Equal(t, "dotenv", v)

	v, ok = lookup("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, v, "an empty value in an earlier source still wins")

	_, ok = lookup("C")
	assert.False(t, ok)
}
