package runtime

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg carries a rendered frame to the Bubble Tea program.
type FrameMsg string

// Bridge is the Bubble Tea model. It owns no state besides the last frame:
// keys and resizes go to the loop, frames come back as FrameMsg.
type Bridge struct {
	input chan<- tea.Msg
	done  <-chan struct{}
	frame string
}

// NewBridge forwards input to the loop until done is closed.
func NewBridge(input chan<- tea.Msg, done <-chan struct{}) *Bridge {
	return &Bridge{input: input, done: done}
}

func (b *Bridge) Init() tea.Cmd {
	return nil
}

func (b *Bridge) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		b.frame = string(msg)
	case tea.KeyMsg, tea.WindowSizeMsg:
		select {
		case b.input <- msg:
		case <-b.done:
			return b, tea.Quit
		}
	}
	return b, nil
}

func (b *Bridge) View() string {
	return b.frame
}

// ForwardFrames sends every frame published by the loop to the program.
func ForwardFrames(ctx context.Context, frames <-chan string, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-frames:
			send(FrameMsg(f))
		}
	}
}
