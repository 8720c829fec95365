// Package templates embeds the HTML pages. Every page is parsed together
// with layout.html and rendered through the "layout" template.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed *.html
var files embed.FS

const (
	Landing        = "landing"
	Register       = "register"
	Login          = "login"
	PostQuestion   = "post-question"
	ViewQuestions  = "view-questions"
	AnswerQuestion = "answer-question"
	NotFound       = "not-found"
	ServerError    = "error"
)

var pages = []string{Landing, Register, Login, PostQuestion, ViewQuestions, AnswerQuestion, NotFound, ServerError}

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
}

// Parse returns one template set per page name.
func Parse() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(files, "layout.html", page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}
