package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/workspace/internal/metrics"
)

// errFatal marks errors that end the event loop.
var errFatal = errors.New("fatal session error")

const (
	occupiedTitle = "Cannot Exit Workspace"
	busyTitle     = "Cannot Close Screen"
	busyText      = "Cannot close Workspace screen.\n\nAll windows on this screen must be closed before exiting.\n\nPlease close all windows and try again."
)

func occupiedText(foreign int) string {
	if foreign == 1 {
		return "Cannot exit Workspace.\n\nThere is 1 window open on a Workspace screen.\n\nPlease close all windows and try again."
	}
	return fmt.Sprintf("Cannot exit Workspace.\n\nThere are %d windows open on Workspace screens.\n\nPlease close all windows and try again.", foreign)
}

// requestQuit runs the close protocol for a quit intent. A refused close
// leaves the session Running and returns nil; only a failure to restore
// the backdrop after a refused close is returned.
func (s *Session) requestQuit() error {
	if s.quitRequested {
		return nil
	}
	_, err := s.tryClose()
	return err
}

// tryClose counts the windows on every surface of the family and tears
// the session down when ours is the only one left. It reports whether the
// close was confirmed.
func (s *Session) tryClose() (bool, error) {
	s.setState(Closing)

	count, err := s.countVisitors()
	if err != nil {
		s.log.Warn("failed to count windows", "error", err)
		s.notice(occupiedTitle, fmt.Sprintf("Cannot exit Workspace.\n\n%v", err))
		s.setState(Running)
		return false, nil
	}
	if count > 1 {
		if err := s.backend.Raise(); err != nil {
			s.log.Debug("failed to raise surface", "error", err)
		}
		s.log.Info("close refused", "windows", count-1)
		metrics.CloseAttempts.WithLabelValues(metrics.OutcomeOccupied).Inc()
		s.notice(occupiedTitle, occupiedText(count-1))
		s.setState(Running)
		return false, nil
	}

	if err := s.console.Close(); err != nil {
		s.log.Warn("failed to close shell", "error", err)
	}
	s.releaseImage()
	s.closeBackdrop()

	if err := s.backend.CloseSurface(); err != nil {
		// A window opened between the count and the close.
		s.log.Info("surface close refused", "error", err)
		metrics.CloseAttempts.WithLabelValues(metrics.OutcomeBusy).Inc()
		if rerr := s.openBackdrop(); rerr != nil {
			return false, fmt.Errorf("%w: %w", errFatal, rerr)
		}
		s.loadBackground()
		s.notice(busyTitle, busyText)
		s.setState(Running)
		return false, nil
	}

	s.surface = nil
	s.quitRequested = true
	metrics.CloseAttempts.WithLabelValues(metrics.OutcomeConfirmed).Inc()
	s.setState(Terminated)
	s.log.Info("workspace closed")
	return true, nil
}

// countVisitors sums the foreign windows over every surface of the family
// and adds one for the backdrop.
func (s *Session) countVisitors() (int, error) {
	surfaces, err := s.backend.Surfaces()
	if err != nil {
		return 0, fmt.Errorf("failed to list surfaces: %w", err)
	}
	count := 1
	for _, info := range surfaces {
		if s.inFamily(info.Name) {
			count += info.Visitors
		}
	}
	s.visitors = count - 1
	metrics.Visitors.Set(float64(s.visitors))
	return count, nil
}

func (s *Session) inFamily(name string) bool {
	return strings.HasPrefix(name, s.opts.Prefix+".")
}

// abandon is a best-effort teardown after the loop failed. Windows still
// open on the surface keep it alive.
func (s *Session) abandon() {
	if s.surface == nil {
		return
	}
	if err := s.console.Close(); err != nil {
		s.log.Debug("failed to close shell", "error", err)
	}
	s.releaseImage()
	s.closeBackdrop()
	if err := s.backend.CloseSurface(); err != nil {
		s.log.Warn("surface left open", "surface", s.opts.Name, "error", err)
		return
	}
	s.surface = nil
	s.setState(Terminated)
}

// release frees what outlives a confirmed close.
func (s *Session) release() {
	if s.broker != nil {
		s.broker.Close()
	}
}
