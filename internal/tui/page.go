package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// chromeHeight is the space reserved for header, nav and footer
const chromeHeight = 6

// pageModel is a scrollable body shared by the report screens
type pageModel struct {
	viewport viewport.Model
	ready    bool
	content  string
}

func (p *pageModel) resize(width, height int) {
	height = max(height-chromeHeight, 1)
	if !p.ready {
		p.viewport = viewport.New(width, height)
		p.ready = true
	} else {
		p.viewport.Width = width
		p.viewport.Height = height
	}
	p.viewport.SetContent(p.content)
}

func (p *pageModel) setContent(content string) {
	p.content = content
	if p.ready {
		p.viewport.SetContent(content)
		p.viewport.GotoTop()
	}
}

func (p pageModel) update(msg tea.Msg) (pageModel, tea.Cmd) {
	if !p.ready {
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p pageModel) view() string {
	if !p.ready {
		return p.content
	}
	return p.viewport.View()
}
