package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmehra/scholarchat/internal/render"
)

const dispatchTimeout = 2 * time.Minute

type dispatchResultMsg struct {
	text string
	err  error
}

func dispatchJob(config Config, message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		result, err := config.Router.Handle(ctx, config.Session, message)
		if err != nil {
			return dispatchResultMsg{text: render.ErrorText(err), err: err}
		}
		return dispatchResultMsg{text: render.Text(result)}
	}
}
