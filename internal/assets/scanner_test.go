package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o644))
	}
	return root
}

func relPaths(assets []*cdn.LocalAsset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.RelPath
	}
	return out
}

var tree = []string{
	"index.html",
	"css/app.css",
	"css/app.css.map",
	"js/app.js",
	"js/vendor/lib.js",
	"img/logo.png",
	"node_modules/pkg/index.js",
	".env",
	".cache/x.js",
	"css/.DS_Store",
	"drafts/post.md",
}

func TestScanner_Defaults(t *testing.T) {
	root := writeTree(t, tree...)

	assets, err := NewScanner(root, Rules{}).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"css/app.css",
		"css/app.css.map",
		"drafts/post.md",
		"img/logo.png",
		"index.html",
		"js/app.js",
		"js/vendor/lib.js",
		"node_modules/pkg/index.js",
	}, relPaths(assets))

	for _, a := range assets {
		assert.True(t, filepath.IsAbs(a.AbsPath))
		assert.Equal(t, int64(len(a.RelPath)), a.Size)
	}
}

func TestScanner_IncludeRules(t *testing.T) {
	root := writeTree(t, tree...)

	tests := []struct {
		name  string
		rules Rules
		want  []string
	}{
		{
			name:  "directories",
			rules: Rules{Include: Include{Directories: []string{"js", "css/"}}},
			want:  []string{"css/app.css", "css/app.css.map", "js/app.js", "js/vendor/lib.js"},
		},
		{
			name:  "extensions",
			rules: Rules{Include: Include{Extensions: []string{"js", ".CSS"}}},
			want:  []string{"css/app.css", "js/app.js", "js/vendor/lib.js", "node_modules/pkg/index.js"},
		},
		{
			name:  "patterns",
			rules: Rules{Include: Include{Patterns: []string{"**/*.png", "*.html"}}},
			want:  []string{"img/logo.png", "index.html"},
		},
		{
			name: "combined",
			rules: Rules{Include: Include{
				Directories: []string{"js"},
				Patterns:    []string{"js/*.js"},
			}},
			want: []string{"js/app.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets, err := NewScanner(root, tt.rules).Scan()
			require.NoError(t, err)
			assert.Equal(t, tt.want, relPaths(assets))
		})
	}
}

func TestScanner_ExcludeRules(t *testing.T) {
	root := writeTree(t, tree...)
	showHidden := false

	tests := []struct {
		name  string
		rules Rules
		want  []string
	}{
		{
			name:  "directories by name and path",
			rules: Rules{Exclude: Exclude{Directories: []string{"node_modules", "js/vendor", "drafts", "img"}}},
			want:  []string{"css/app.css", "css/app.css.map", "index.html", "js/app.js"},
		},
		{
			name:  "files and extensions",
			rules: Rules{Exclude: Exclude{Files: []string{"index.html", "js/app.js"}, Extensions: []string{"map", "md"}, Directories: []string{"node_modules"}}},
			want:  []string{"css/app.css", "img/logo.png", "js/vendor/lib.js"},
		},
		{
			name:  "gitignore patterns",
			rules: Rules{Exclude: Exclude{Patterns: []string{"*.map", "node_modules/", "/drafts", "vendor"}}},
			want:  []string{"css/app.css", "img/logo.png", "index.html", "js/app.js"},
		},
		{
			name:  "hidden files included",
			rules: Rules{Exclude: Exclude{Hidden: &showHidden, Patterns: []string{"node_modules/", "drafts/", "js/", "css/", "img/"}}},
			want:  []string{".cache/x.js", ".env", "index.html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets, err := NewScanner(root, tt.rules).Scan()
			require.NoError(t, err)
			assert.Equal(t, tt.want, relPaths(assets))
		})
	}
}

func TestScanner_IgnoreFile(t *testing.T) {
	root := writeTree(t, "a.txt", "b.log", "keep/c.txt", "skip/d.txt")
	ignore := "# build output\n*.log\n\nskip/\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte(ignore), 0o644))

	hidden := false
	assets, err := NewScanner(root, Rules{Exclude: Exclude{Hidden: &hidden}}).Scan()
	require.NoError(t, err)
	// the ignore file itself is never an asset
	assert.Equal(t, []string{"a.txt", "keep/c.txt"}, relPaths(assets))
}

func TestScanner_Errors(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "missing"), Rules{}).Scan()
	assert.ErrorContains(t, err, "not a directory")

	_, err = NewScanner("", Rules{}).Scan()
	assert.Error(t, err)

	_, err = NewScanner(t.TempDir(), Rules{Include: Include{Patterns: []string{"[a"}}}).Scan()
	var pe *PatternError
	assert.ErrorAs(t, err, &pe)
}

func TestScanner_EmptyRoot(t *testing.T) {
	assets, err := NewScanner(t.TempDir(), Rules{}).Scan()
	require.NoError(t, err)
	assert.Empty(t, assets)
}
