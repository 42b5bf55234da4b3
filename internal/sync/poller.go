package sync

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// fetchTimeout is the maximum time allowed for a single reconcile fetch.
const fetchTimeout = 30 * time.Second

// ChangedMsg is a tea.Msg sent when the notification list or the
// synchronizer state changed.
type ChangedMsg struct {
	Unread int
	State  State
}

// poll re-fetches the list every pollInterval until stop is closed, so
// that missed push events are eventually reconciled.
func (s *Synchronizer) poll(gen uint64, stop <-chan struct{}) {
	if s.pollInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			current := s.generation == gen
			s.mu.Unlock()
			if !current {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			_ = s.Refresh(ctx)
			cancel()
		}
	}
}

// notify sends a ChangedMsg without blocking. Pending changes coalesce
// into one message.
func (s *Synchronizer) notify() {
	msg := ChangedMsg{Unread: s.UnreadCount(), State: s.State()}
	select {
	case s.changes <- msg:
	default:
		// A change is already pending; the listener reads fresh state anyway.
	}
}

// WaitForChange returns a tea.Cmd that waits for the next ChangedMsg.
// Call it again after handling each ChangedMsg to keep listening.
func (s *Synchronizer) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.changes
		if !ok {
			return nil
		}
		return msg
	}
}
