package palette

import (
	"context"
	"errors"
	"strings"
)

// Notifier shows blocking notices as a one-button palette with the OK row
// flagged urgent.
type Notifier struct {
	backend Backend
}

func NewNotifier(backend Backend) *Notifier {
	return &Notifier{backend: backend}
}

// Notice shows text under title and waits until the user acknowledges or
// dismisses it.
func (n *Notifier) Notice(title, text string) error {
	return n.NoticeContext(context.Background(), title, text)
}

func (n *Notifier) NoticeContext(ctx context.Context, title, text string) error {
	_, err := pick(ctx, n.backend, noticeScreen(n.backend.Capabilities(), title, text))
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

// noticeScreen puts the text in the message bar, or in rows of its own for
// launchers without one.
func noticeScreen(caps Capabilities, title, text string) Screen {
	s := Screen{Prompt: title, Urgent: true}
	if caps.MessageBar {
		s.Message = text
	} else {
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			s.Rows = append(s.Rows, Row{Kind: RowText, Label: line})
		}
	}
	s.Rows = append(s.Rows, Row{Kind: RowAcknowledge, Label: "OK"})
	return s
}
