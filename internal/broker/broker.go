// Package broker is the command channel between outside requesters (the
// IPC socket, the global hotkey) and the session loop.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/workspace/internal/menu"
)

var (
	// ErrClosed is returned by Send once the broker has been released.
	ErrClosed = errors.New("broker closed")
	// ErrInactive is returned for hotkey messages while the broker is
	// disabled.
	ErrInactive = errors.New("broker inactive")
)

// Command is the kind of a broker message.
type Command int

const (
	Enable Command = iota
	Disable
	Appear
	Disappear
	Kill
	Unique
	Hotkey
	Status
	Invoke
)

var commandNames = map[Command]string{
	Enable:    "enable",
	Disable:   "disable",
	Appear:    "appear",
	Disappear: "disappear",
	Kill:      "kill",
	Unique:    "unique",
	Hotkey:    "hotkey",
	Status:    "status",
	Invoke:    "invoke",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Reply is the session's answer to a message.
type Reply struct {
	Err  error
	Data any
}

// Message is one request for the session loop. Action is set for Invoke.
type Message struct {
	Command Command
	Action  menu.Action

	reply chan Reply
	once  sync.Once
}

// NewMessage builds a message whose reply can be awaited with Wait.
func NewMessage(cmd Command, action menu.Action) *Message {
	return &Message{
		Command: cmd,
		Action:  action,
		reply:   make(chan Reply, 1),
	}
}

// Reply answers the message. Only the first call has an effect.
func (m *Message) Reply(r Reply) {
	m.once.Do(func() {
		m.reply <- r
	})
}

// Wait blocks for the reply or ctx.
func (m *Message) Wait(ctx context.Context) (Reply, error) {
	select {
	case r := <-m.reply:
		return r, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Broker queues messages for the session loop. The activation flag is
// owned by the session, which flips it on Enable and Disable.
type Broker struct {
	name   string
	msgs   chan *Message
	active atomic.Bool
	done   chan struct{}
	close  sync.Once
}

// New creates an active broker.
func New(name string) *Broker {
	b := &Broker{
		name: name,
		msgs: make(chan *Message, 16),
		done: make(chan struct{}),
	}
	b.active.Store(true)
	return b
}

func (b *Broker) Name() string { return b.name }

// Messages is read by the session loop only.
func (b *Broker) Messages() <-chan *Message { return b.msgs }

func (b *Broker) Active() bool { return b.active.Load() }

func (b *Broker) SetActive(active bool) { b.active.Store(active) }

// Send queues a message and waits for the session's reply.
func (b *Broker) Send(ctx context.Context, cmd Command, action menu.Action) (Reply, error) {
	msg := NewMessage(cmd, action)
	select {
	case b.msgs <- msg:
	case <-b.done:
		return Reply{}, ErrClosed
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case r := <-msg.reply:
		return r, nil
	case <-b.done:
		// The last reply may race with Close.
		select {
		case r := <-msg.reply:
			return r, nil
		default:
		}
		return Reply{}, ErrClosed
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Post queues a message without waiting. It drops the message when the
// queue is full or the broker is closed, and reports whether it was queued.
func (b *Broker) Post(cmd Command) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.msgs <- NewMessage(cmd, nil):
		return true
	default:
		return false
	}
}

// Close releases waiting senders. Messages already queued are dropped.
func (b *Broker) Close() {
	b.close.Do(func() {
		close(b.done)
	})
}
