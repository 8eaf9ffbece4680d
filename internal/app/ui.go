package app

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"phrasebook/internal/store"
)

type pageView struct {
	Authenticated bool
	Email         string
	Flash         string
	Error         string
	Link          string
	LinkExpiresAt time.Time
	DemoText      string
	Emojis        string
	Categories    []categoryView
}

type categoryView struct {
	store.Category
	Phrases []store.Phrase
}

func (s *HTTPServer) mountUI(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.optionalSession(r)
		s.render(w, r, http.StatusOK, session, pageView{})
	})

	r.Route("/ui", func(r chi.Router) {
		r.Post("/link", s.handleUILink)
		r.Post("/verify", s.handleUIVerify)
		r.Post("/logout", s.handleUILogout)
		r.Post("/categories", s.handleUIAddCategory)
		r.Post("/categories/{categoryID}/phrases", s.handleUIAddPhrase)
		r.Post("/emoji", s.handleUIEmojify)
	})
}

func (s *HTTPServer) handleUILink(w http.ResponseWriter, r *http.Request) {
	session, _ := s.optionalSession(r)
	link, err := s.service.RequestLoginLink(r.Context(), r.PostFormValue("email"))
	if err != nil {
		s.renderError(w, r, session, pageView{}, err)
		return
	}
	s.render(w, r, http.StatusOK, session, pageView{
		Flash:         fmt.Sprintf("Sign-in link created for %s. Paste it below to sign in.", link.Email),
		Link:          link.URL,
		LinkExpiresAt: link.ExpiresAt,
	})
}

func (s *HTTPServer) handleUIVerify(w http.ResponseWriter, r *http.Request) {
	session, ok, err := s.service.VerifyLoginLink(r.Context(), r.PostFormValue("link"))
	if err != nil {
		s.renderError(w, r, Session{}, pageView{}, err)
		return
	}
	if !ok {
		s.render(w, r, http.StatusUnauthorized, Session{}, pageView{Error: "Invalid login link"})
		return
	}
	setSessionCookie(w, r, session)
	s.render(w, r, http.StatusOK, session, pageView{Flash: "Signed in as " + session.Email})
}

func (s *HTTPServer) handleUILogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := s.optionalSession(r); ok {
		if err := s.service.Logout(r.Context(), session); err != nil {
			s.renderError(w, r, session, pageView{}, err)
			return
		}
	}
	clearSessionCookie(w, r)
	s.render(w, r, http.StatusOK, Session{}, pageView{Flash: "Signed out"})
}

func (s *HTTPServer) handleUIAddCategory(w http.ResponseWriter, r *http.Request) {
	session, _ := s.optionalSession(r)
	category, err := s.service.AddCategory(r.Context(), session, r.PostFormValue("name"))
	if err != nil {
		s.renderError(w, r, session, pageView{}, err)
		return
	}
	s.render(w, r, http.StatusOK, session, pageView{Flash: fmt.Sprintf("Added %s %s", category.Name, category.Emoji)})
}

func (s *HTTPServer) handleUIAddPhrase(w http.ResponseWriter, r *http.Request) {
	session, _ := s.optionalSession(r)
	_, err := s.service.AddPhrase(r.Context(), session, chi.URLParam(r, "categoryID"), r.PostFormValue("text"))
	if err != nil {
		s.renderError(w, r, session, pageView{}, err)
		return
	}
	s.render(w, r, http.StatusOK, session, pageView{Flash: "Phrase added"})
}

func (s *HTTPServer) handleUIEmojify(w http.ResponseWriter, r *http.Request) {
	session, _ := s.optionalSession(r)
	text := r.PostFormValue("text")
	emojis, err := s.service.Emojify(r.Context(), session, text)
	if err != nil {
		s.renderError(w, r, session, pageView{DemoText: text}, err)
		return
	}
	s.render(w, r, http.StatusOK, session, pageView{DemoText: text, Emojis: emojis})
}

func (s *HTTPServer) renderError(w http.ResponseWriter, r *http.Request, session Session, view pageView, err error) {
	status, code, message, _ := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("ui action failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	view.Error = message
	s.render(w, r, status, session, view)
}

// render draws the whole page. Authenticated pages list every category with its phrases.
func (s *HTTPServer) render(w http.ResponseWriter, r *http.Request, status int, session Session, view pageView) {
	if session.UserID != "" {
		view.Authenticated = true
		view.Email = session.Email
		if err := s.loadCategories(r, session, &view); err != nil && view.Error == "" {
			_, _, view.Error, _ = mapError(err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, view); err != nil {
		s.logger.Error("render page", zap.String("request_id", requestID(r.Context())), zap.Error(err))
	}
}

func (s *HTTPServer) loadCategories(r *http.Request, session Session, view *pageView) error {
	categories, err := s.service.Categories(r.Context(), session)
	if err != nil {
		return err
	}
	for _, category := range categories {
		phrases, err := s.service.Phrases(r.Context(), session, category.ID)
		if err != nil {
			return err
		}
		view.Categories = append(view.Categories, categoryView{Category: category, Phrases: phrases})
	}
	return nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Emoji Phrasebook</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #222; }
section { border: 1px solid #e5e5e5; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
.flash { background: #eef8ee; padding: .5rem 1rem; border-radius: 4px; }
.error { background: #fdecea; padding: .5rem 1rem; border-radius: 4px; }
.link { word-break: break-all; font-family: monospace; }
.emoji { font-size: 1.6rem; }
</style>
</head>
<body>
<h1>📖 Emoji Phrasebook</h1>
{{if .Flash}}<p class="flash">{{.Flash}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}

{{if .Authenticated}}
<p>Signed in as <strong>{{.Email}}</strong></p>
<form method="post" action="/ui/logout"><button type="submit">Log out</button></form>

<section>
<h2>Add category</h2>
<form method="post" action="/ui/categories">
<input name="name" placeholder="Travel" required>
<button type="submit">Add category</button>
</form>
</section>

{{range .Categories}}
<section>
<h3><span class="emoji">{{.Emoji}}</span> {{.Name}}</h3>
<ul>
{{range .Phrases}}<li>{{.Text}}</li>{{else}}<li><em>No phrases yet</em></li>{{end}}
</ul>
<form method="post" action="/ui/categories/{{.ID}}/phrases">
<input name="text" placeholder="Where is the station?" required>
<button type="submit">Add phrase</button>
</form>
</section>
{{end}}

<section>
<h2>Text to emoji</h2>
<form method="post" action="/ui/emoji">
<input name="text" value="{{.DemoText}}" placeholder="Pizza night in Rome" required>
<button type="submit">Generate emojis</button>
</form>
{{if .Emojis}}<p class="emoji">{{.Emojis}}</p>{{end}}
</section>
{{else}}
<section>
<h2>Sign in</h2>
<form method="post" action="/ui/link">
<input name="email" type="email" placeholder="you@example.com" required>
<button type="submit">Send login link</button>
</form>
{{if .Link}}
<p>Your sign-in link (valid until {{.LinkExpiresAt.Format "15:04 MST"}}):</p>
<p class="link">{{.Link}}</p>
{{end}}
<form method="post" action="/ui/verify">
<input name="link" placeholder="Paste your login link" value="{{.Link}}" required>
<button type="submit">Verify</button>
</form>
</section>
{{end}}
</body>
</html>
`))
