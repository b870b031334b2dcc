// Package layout holds the page shell shared by every HTML page.
package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/web/templates/markup"
)

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string // success, error or info
	Message string
}

// PageData is common to every page
type PageData struct {
	Title  string
	Player *model.Player
	Flash  *FlashMessage
	// Section highlights the matching navigation link
	Section string
}

// NavLink is one entry of the navigation bar
type NavLink struct {
	Section string
	Href    string
	Label   string
}

// Nav lists the application sections in display order
var Nav = []NavLink{
	{"home", "/", "Home"},
	{"players", "/players/", "Players"},
	{"characters", "/characters/", "Characters"},
	{"transactions", "/transactions/", "Transactions"},
	{"admin", "/admin/", "Admin"},
}

// Page wraps content in the site layout
func Page(data PageData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		m.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		m.Text(data.Title)
		m.Raw(" | FlaskFactor</title></head><body>")
		m.Component(ctx, navBar(data))
		if data.Flash != nil {
			m.Raw(`<div class="flash flash-`)
			m.Text(data.Flash.Type)
			m.Raw(`" role="alert">`)
			m.Text(data.Flash.Message)
			m.Raw("</div>")
		}
		m.Raw("<main>")
		m.Component(ctx, content)
		m.Raw("</main></body></html>")
		return m.Err()
	})
}

func navBar(data PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<nav id="nav"><ul>`)
		for _, link := range Nav {
			m.Raw(`<li><a href="`)
			m.Text(link.Href)
			m.Raw(`"`)
			m.If(link.Section == data.Section, ` class="active" aria-current="page"`)
			m.Raw(">")
			m.Text(link.Label)
			m.Raw("</a></li>")
		}
		m.Raw(`</ul><div id="account">`)
		if data.Player != nil {
			m.Raw(`<span class="player-name">`)
			m.Text(data.Player.Name)
			m.Raw(`</span><form method="post" action="/logout"><button type="submit">Log out</button></form>`)
		} else {
			m.Raw(`<a href="/login">Log in</a>`)
		}
		m.Raw("</div></nav>")
		return m.Err()
	})
}
