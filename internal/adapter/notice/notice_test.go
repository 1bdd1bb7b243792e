package notice

import (
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	testCases := []struct {
		name      string
		fileName  string
		content   string
		expectNil bool
		title     string
		contains  string
	}{
		{
			name:      "no file configured",
			expectNil: true,
		},
		{
			name:      "missing file",
			fileName:  "/notice.md",
			expectNil: true,
		},
		{
			name:     "plain markdown",
			fileName: "/notice.md",
			content:  "# Maintenance window\nUploads pause at midnight.",
			contains: "<h1>Maintenance window</h1>",
		},
		{
			name:     "frontmatter title",
			fileName: "/notice.md",
			content: `---
title: "Welcome"
enabled: true
---
Upload away.
`,
			title:    "Welcome",
			contains: "Upload away.",
		},
		{
			name:     "disabled notice",
			fileName: "/notice.md",
			content: `---
title: "Hidden"
enabled: false
---
Not shown.
`,
			expectNil: true,
		},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.content != "" {
				require.NoError(t, afero.WriteFile(fs, "/notice.md", []byte(tc.content), 0o600))
			}

			n, err := NewNoticeAdapterWithFS(fs, tc.fileName, log).Load()
			require.NoError(t, err)

			if tc.expectNil {
				require.Nil(t, n)

				return
			}

			require.NotNil(t, n)
			require.Equal(t, tc.title, n.Title)
			require.Contains(t, string(n.Content), tc.contains)
		})
	}
}
