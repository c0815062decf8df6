package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "keeps only the allowed flag and its value",
			args:    []string{"-a", "http://127.0.0.1:8080", "-c", "conf.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "keeps several allowed flags in order",
			args:    []string{"-a", "http://127.0.0.1:8080", "-i", "10s", "-v"},
			allowed: []string{"-a", "-i"},
			want:    []string{"-a", "http://127.0.0.1:8080", "-i", "10s"},
		},
		{
			name:    "equals spelling travels as one token",
			args:    []string{"-config=server.json", "-d", "postgres://primary"},
			allowed: []string{"-config"},
			want:    []string{"-config=server.json"},
		},
		{
			name:    "equals spelling may carry a dash-starting value",
			args:    []string{"-config=--odd.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=--odd.json"},
		},
		{
			name:    "unknown flags and positionals are dropped",
			args:    []string{"-x", "1", "--y=2", "upload"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value is kept bare",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "dash-starting token after a flag is not its value",
			args:    []string{"-c", "-i"},
			allowed: []string{"-c", "-i"},
			want:    []string{"-c", "-i"},
		},
		{
			name:    "repeated flag keeps every occurrence",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "no arguments",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"ik", "-c", "/etc/ik/client.json"}
		assert.Equal(t, "/etc/ik/client.json", JsonConfigFlags())
	})

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"ik", "-config", "/etc/ik/server.json"}
		assert.Equal(t, "/etc/ik/server.json", JsonConfigFlags())
	})

	t.Run("equals spelling", func(t *testing.T) {
		os.Args = []string{"ik", "-config=/etc/ik/alt.json"}
		assert.Equal(t, "/etc/ik/alt.json", JsonConfigFlags())
	})

	t.Run("absent flag yields empty path", func(t *testing.T) {
		os.Args = []string{"ik", "-a", "http://127.0.0.1:8080"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("later flag wins", func(t *testing.T) {
		os.Args = []string{"ik", "-c", "/one.json", "-config", "/two.json"}
		assert.Equal(t, "/two.json", JsonConfigFlags())
	})
}
