// Package view holds the server-rendered HTML pages.
package view

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	HomeTemplate          = "home.html"
	CreateArticleTemplate = "create_article.html"
)

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func markdownRenderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		// Raw HTML in post bodies is dropped by goldmark's default renderer
		// because html.WithUnsafe is not set.
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

// RenderMarkdown converts a post body to HTML. On a conversion error the
// body is returned escaped.
func RenderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer().Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// Templates parses every page template. It panics on a parse error, which
// can only come from the constants in this package.
func Templates() *template.Template {
	t := template.Must(template.New(HomeTemplate).Funcs(template.FuncMap{
		"markdown": RenderMarkdown,
	}).Parse(homePage))
	template.Must(t.New(CreateArticleTemplate).Parse(createArticlePage))
	return t
}

const homePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{- if .Posts}}
  <ul class="posts">
    {{- range .Posts}}
    <li class="post" id="post-{{.ID}}">
      <h2>{{.Title}}</h2>
      <time datetime="{{.CreatedAt.Format "2006-01-02T15:04:05Z07:00"}}">{{.CreatedAt.Format "Jan 2, 2006"}}</time>
      <div class="body">{{markdown .Body}}</div>
    </li>
    {{- end}}
  </ul>
  {{- else}}
  <p class="empty">No posts yet.</p>
  {{- end}}
</body>
</html>
`

const createArticlePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>New article | {{.Title}}</title>
</head>
<body>
  <h1>New article</h1>
  <p class="author">Writing as {{.User.FirstName}} {{.User.LastName}} ({{.User.Email}})</p>
  <form method="post" action="/create_article">
    <label for="title">Title</label>
    <input id="title" name="title" type="text" maxlength="256" required>
    <label for="body">Body</label>
    <textarea id="body" name="body" rows="12" required></textarea>
    <button type="submit">Publish</button>
  </form>
</body>
</html>
`
