package notice

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Notice is an operator-maintained announcement shown on the browse page,
// written as markdown with optional yaml frontmatter.
type Notice struct {
	Title   string
	Content template.HTML
}

type meta struct {
	Title   string `yaml:"title"`
	Enabled *bool  `yaml:"enabled"`
}

type noticeAdapter struct {
	fs       afero.Fs
	fileName string
	md       goldmark.Markdown
	log      *slog.Logger
}

func NewNoticeAdapter(fileName string, log *slog.Logger) *noticeAdapter {
	return NewNoticeAdapterWithFS(afero.NewOsFs(), fileName, log)
}

func NewNoticeAdapterWithFS(fs afero.Fs, fileName string, log *slog.Logger) *noticeAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &noticeAdapter{
		fs:       fs,
		fileName: fileName,
		md:       md,
		log:      log.With(slog.String("item", "NoticeAdapter")),
	}
}

// Load renders the notice file. A missing or disabled notice yields nil
// without error; the browse page simply omits it.
func (a *noticeAdapter) Load() (*Notice, error) {
	if a.fileName == "" {
		return nil, nil
	}

	data, err := afero.ReadFile(a.fs, a.fileName)
	if err != nil {
		a.log.Warn("Cannot read notice file", slog.String("file", a.fileName), slog.Any("error", err))

		return nil, nil
	}

	var buf bytes.Buffer

	pc := parser.NewContext()
	if err := a.md.Convert(data, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("cannot convert notice markdown: %w", err)
	}

	n := &Notice{Content: template.HTML(buf.String())}

	if fm := frontmatter.Get(pc); fm != nil {
		var m meta
		if err := fm.Decode(&m); err != nil {
			return nil, fmt.Errorf("cannot decode notice frontmatter: %w", err)
		}

		if m.Enabled != nil && !*m.Enabled {
			return nil, nil
		}

		n.Title = m.Title
	}

	return n, nil
}
