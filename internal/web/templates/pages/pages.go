// Package pages renders the HTML pages of the web interface.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/web/templates/layout"
	"github.com/cantis/FlaskFactor2/internal/web/templates/markup"
)

// page renders body inside the site layout
func page(data layout.PageData, body func(ctx context.Context, m *markup.Writer)) templ.Component {
	return layout.Page(data, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		body(ctx, m)
		return m.Err()
	}))
}

// HomeData is the data for the home page
type HomeData struct {
	layout.PageData
	PlayerCount int
}

// Home renders the landing page
func Home(data HomeData) templ.Component {
	data.Section = "home"
	return page(data.PageData, func(_ context.Context, m *markup.Writer) {
		m.Raw(`<section id="home"><h1>FlaskFactor</h1>`)
		if data.Player != nil {
			m.Raw(`<p class="welcome">Welcome back, `)
			m.Text(data.Player.Name)
			m.Raw(`.</p><p><a href="/players/">Manage players</a> (`)
			m.Textf("%d", data.PlayerCount)
			m.Raw(" registered)</p>")
		} else {
			m.Raw(`<p class="welcome">Player and campaign management for your table.</p>`)
			m.Raw(`<p><a href="/login">Log in</a> to manage players.</p>`)
		}
		m.Raw("</section>")
	})
}

// LoginData is the data for the login page
type LoginData struct {
	layout.PageData
	Email string
	Error string
	Next  string
}

// Login renders the login form
func Login(data LoginData) templ.Component {
	return page(data.PageData, func(_ context.Context, m *markup.Writer) {
		m.Raw(`<section id="login"><h1>Log in</h1>`)
		formError(m, data.Error)
		m.Raw(`<form method="post" action="/login"><input type="hidden" name="next" value="`)
		m.Text(data.Next)
		m.Raw(`"><label for="email">Email</label><input type="email" id="email" name="email" value="`)
		m.Text(data.Email)
		m.Raw(`" required><label for="password">Password</label>`)
		m.Raw(`<input type="password" id="password" name="password" required>`)
		m.Raw(`<button type="submit">Log in</button></form></section>`)
	})
}

func formError(m *markup.Writer, msg string) {
	if msg == "" {
		return
	}
	m.Raw(`<div class="form-error" role="alert">`)
	m.Text(msg)
	m.Raw("</div>")
}

// PlayerListData is the data for the player list
type PlayerListData struct {
	layout.PageData
	Players []*model.Player
}

// PlayerList renders every player with edit and delete actions
func PlayerList(data PlayerListData) templ.Component {
	data.Section = "players"
	return page(data.PageData, func(_ context.Context, m *markup.Writer) {
		m.Raw(`<section id="players"><h1>Players</h1>`)
		m.Raw(`<p><a href="/players/add" class="button">Add player</a></p>`)
		if len(data.Players) == 0 {
			m.Raw(`<p class="empty">No players yet.</p></section>`)
			return
		}
		m.Raw(`<table class="players"><thead><tr><th>ID</th><th>Name</th><th>Email</th><th>Active</th><th></th></tr></thead><tbody>`)
		for _, p := range data.Players {
			m.Rawf(`<tr class="player" data-id="%d"><td>%d</td>`, p.ID, p.ID)
			m.Raw(`<td class="name">`)
			m.Text(p.Name)
			m.Raw(`</td><td class="email">`)
			m.Text(p.Email)
			m.Raw(`</td><td class="active">`)
			if p.IsActive {
				m.Raw("yes")
			} else {
				m.Raw("no")
			}
			m.Raw("</td><td>")
			m.Rawf(`<a href="/players/%d" class="edit">Edit</a>`, p.ID)
			m.Rawf(`<form method="post" action="/players/%d/delete" class="delete">`, p.ID)
			m.Raw(`<button type="submit">Delete</button></form></td></tr>`)
		}
		m.Raw("</tbody></table></section>")
	})
}

// PlayerFormData is the data for the add and edit player forms
type PlayerFormData struct {
	layout.PageData
	// PlayerID is zero when adding a player
	PlayerID      model.PlayerID
	Name          string
	Email         string
	IsActive      bool
	ResetPassword bool
	// PasswordAttempts is the failed login count shown when editing
	PasswordAttempts int
	FieldErrors      map[string]string
	Error            string
}

// Editing reports whether the form edits an existing player
func (d PlayerFormData) Editing() bool {
	return d.PlayerID != 0
}

// PlayerForm renders the add or edit form
func PlayerForm(data PlayerFormData) templ.Component {
	data.Section = "players"
	return page(data.PageData, func(_ context.Context, m *markup.Writer) {
		m.Raw(`<section id="player-form">`)
		if data.Editing() {
			m.Raw(`<h1>Edit player</h1>`)
			m.Rawf(`<form method="post" action="/players/%d">`, data.PlayerID)
		} else {
			m.Raw(`<h1>Add player</h1><form method="post" action="/players">`)
		}
		formError(m, data.Error)
		m.Raw(`<div class="field"><label for="name">Name</label><input type="text" id="name" name="name" value="`)
		m.Text(data.Name)
		m.Raw(`" required>`)
		fieldError(m, data.FieldErrors, "name")
		m.Raw(`</div><div class="field"><label for="email">Email</label><input type="email" id="email" name="email" value="`)
		m.Text(data.Email)
		m.Raw(`" required>`)
		fieldError(m, data.FieldErrors, "email")
		m.Raw("</div>")
		if !data.Editing() {
			m.Raw(`<div class="field"><label for="password">Password</label>`)
			m.Raw(`<input type="password" id="password" name="password" required>`)
			fieldError(m, data.FieldErrors, "password")
			m.Raw(`</div><button type="submit">Add player</button>`)
		} else {
			checkbox(m, "is_active", "Active", data.IsActive)
			checkbox(m, "reset_password", "Must reset password", data.ResetPassword)
			if data.PasswordAttempts > 0 {
				m.Raw(`<div class="field" id="password-attempts"><span>`)
				m.Textf("Failed logins: %d", data.PasswordAttempts)
				m.Raw(`</span><label><input type="checkbox" name="clear_attempts" value="on"> Clear failed logins</label></div>`)
			}
			m.Raw(`<fieldset><legend>Change password</legend>`)
			m.Raw(`<label for="current_password">Current password</label>`)
			m.Raw(`<input type="password" id="current_password" name="current_password">`)
			fieldError(m, data.FieldErrors, "current_password")
			m.Raw(`<label for="new_password">New password</label>`)
			m.Raw(`<input type="password" id="new_password" name="new_password">`)
			fieldError(m, data.FieldErrors, "new_password")
			m.Raw(`</fieldset><button type="submit">Save</button>`)
		}
		m.Raw(`</form><p><a href="/players/">Back to players</a></p></section>`)
	})
}

func fieldError(m *markup.Writer, errs map[string]string, field string) {
	msg := errs[field]
	if msg == "" {
		return
	}
	m.Raw(`<span class="field-error" data-field="` + field + `">`)
	m.Text(msg)
	m.Raw("</span>")
}

func checkbox(m *markup.Writer, name, label string, checked bool) {
	m.Raw(`<div class="field"><label><input type="checkbox" name="` + name + `" value="on"`)
	m.If(checked, " checked")
	m.Raw("> ")
	m.Text(label)
	m.Raw("</label></div>")
}

// SectionData is the data for a section that has no features yet
type SectionData struct {
	layout.PageData
	Heading string
	Summary string
}

// Section renders a placeholder section page
func Section(data SectionData) templ.Component {
	return page(data.PageData, func(_ context.Context, m *markup.Writer) {
		m.Raw(`<section id="section"><h1>`)
		m.Text(data.Heading)
		m.Raw("</h1><p>")
		m.Text(data.Summary)
		m.Raw("</p></section>")
	})
}

// ErrorData is the data for the error page
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}

// Error renders the error page
func Error(data ErrorData) templ.Component {
	return page(data.PageData, func(_ context.Context, m *markup.Writer) {
		m.Raw(`<section id="error"><h1>`)
		m.Textf("%d", data.Status)
		m.Raw(`</h1><p class="message">`)
		m.Text(data.Message)
		m.Raw(`</p><p><a href="/">Return to home</a></p></section>`)
	})
}
