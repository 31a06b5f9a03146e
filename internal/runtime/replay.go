package runtime

import (
	"context"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgglance/internal/app"
	"github.com/rebeliceyang/pgglance/internal/replay"
)

// ReplayHistoryLength is the graph history kept while replaying.
const ReplayHistoryLength = 120

// RunReplay plays the recording at path until the user quits. Used when
// the program is started in replay mode, where the loop has no live App.
func (l *Loop) RunReplay(ctx context.Context, path string) error {
	session, err := replay.Load(path)
	if err != nil {
		return err
	}
	l.play(ctx, l.newReplayApp(session, path), session)
	return nil
}

// replayFile plays a recording chosen in the recordings overlay. A load
// failure is reported on the live App.
func (l *Loop) replayFile(ctx context.Context, path string) error {
	session, err := replay.Load(path)
	if err != nil {
		l.app.Status = "Failed to load recording: " + err.Error()
		l.logger.Warn("failed to load recording", "path", path, "error", err)
		return nil
	}
	l.logger.Info("replay started", "path", path, "snapshots", session.Len())
	l.play(ctx, l.newReplayApp(session, path), session)
	return nil
}

func (l *Loop) newReplayApp(session *replay.Session, path string) *app.App {
	cfg := l.opts.Config
	if l.app != nil {
		cfg = l.app.Config
	}
	ra := app.NewReplay(session.Connection(), ReplayHistoryLength, cfg,
		session.Header.ServerInfo, filepath.Base(path), session.Len())
	ra.ReplayStepped(session.Current(), session.Position())
	ra.Replay.Playing = true
	return ra
}

// play runs the replay sub-loop on the loop goroutine. Only SaveConfig is
// honoured among the replay App's actions.
func (l *Loop) play(ctx context.Context, ra *app.App, session *replay.Session) {
	lastAdvance := time.Now()
	for ra.Running {
		if ra.Replay.Playing && !session.AtEnd() && time.Since(lastAdvance) >= session.Interval(ra.Replay.Speed) {
			if session.StepForward() {
				ra.ReplayStepped(session.Current(), session.Position())
			}
			lastAdvance = time.Now()
			if session.AtEnd() {
				ra.Replay.Playing = false
			}
		}

		l.render(ra)

		var wake <-chan time.Time
		var timer *time.Timer
		if ra.Replay.Playing && !session.AtEnd() {
			timer = time.NewTimer(max(session.Interval(ra.Replay.Speed)-time.Since(lastAdvance), 0))
			wake = timer.C
		}

		select {
		case <-ctx.Done():
			ra.Running = false
		case msg := <-l.input:
			if key, ok := msg.(tea.KeyMsg); !ok || !handleReplayKey(ra, session, key, &lastAdvance) {
				l.handleInput(ra, msg)
			}
		case <-wake:
		}
		if timer != nil {
			timer.Stop()
		}

		for {
			action, ok := ra.PopAction()
			if !ok {
				break
			}
			if action.Kind == app.ActionSaveConfig {
				l.saveConfig(ra)
			}
		}
	}
}

// handleReplayKey applies playback keys before the App sees them. Space
// and the speed keys are left to text fields while one is being edited;
// stepping and jumping only apply in the normal view.
func handleReplayKey(a *app.App, s *replay.Session, msg tea.KeyMsg, lastAdvance *time.Time) bool {
	r := a.Replay
	if r == nil {
		return false
	}
	mode := a.Mode.Kind
	editing := mode == app.ModeFilter || mode == app.ModeConfigEditField
	normal := mode == app.ModeNormal

	switch msg.String() {
	case " ":
		if editing {
			return false
		}
		r.Playing = !r.Playing
		*lastAdvance = time.Now()
	case "right", "l":
		if !normal {
			return false
		}
		if s.StepForward() {
			a.ReplayStepped(s.Current(), s.Position())
		}
	case "left", "h":
		if !normal {
			return false
		}
		if s.StepBack() {
			a.ReplayStepped(s.Current(), s.Position())
		}
	case ">":
		if editing {
			return false
		}
		r.Speed = replay.NextSpeed(r.Speed)
	case "<":
		if editing {
			return false
		}
		r.Speed = replay.PrevSpeed(r.Speed)
	case "g":
		if !normal {
			return false
		}
		s.JumpStart()
		a.ReplayStepped(s.Current(), s.Position())
	case "G":
		if !normal {
			return false
		}
		s.JumpEnd()
		a.ReplayStepped(s.Current(), s.Position())
		r.Playing = false
	default:
		return false
	}
	return true
}
