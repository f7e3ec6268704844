// Package dashboard holds the client-side screen logic of the operator console:
// the session guard, list screens, forms and the password recovery flow.
package dashboard

import "sync"

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a transient, dismissible message for the operator.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Inbox collects notices in order.
type Inbox struct {
	mu      sync.Mutex
	notices []Notice
}

func (i *Inbox) Notify(n Notice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.notices = append(i.notices, n)
}

func (i *Inbox) Notices() []Notice {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Notice(nil), i.notices...)
}

// Last returns the newest notice, zero when there is none.
func (i *Inbox) Last() Notice {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.notices) == 0 {
		return Notice{}
	}
	return i.notices[len(i.notices)-1]
}

func failure(message string) Notice {
	return Notice{Level: LevelError, Title: "Error", Message: message}
}

func success(message string) Notice {
	return Notice{Level: LevelInfo, Title: "Success", Message: message}
}
