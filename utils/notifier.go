package utils

import "log"

// NoticeKind classifies a user-facing notice
type NoticeKind string

const (
	NoticeError NoticeKind = "error"
	NoticeInfo  NoticeKind = "info"
)

// Notice is something the surrounding screen should show the user
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Notifier receives user-facing notices from the controllers
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to the standard logger
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	if n.Kind == NoticeError {
		if n.Err != nil {
			log.Printf("❌ %s: %v", n.Message, n.Err)
			return
		}
		log.Printf("❌ %s", n.Message)
		return
	}
	log.Printf("ℹ️ %s", n.Message)
}

// ErrorNotice builds an error notice
func ErrorNotice(message string, err error) Notice {
	return Notice{Kind: NoticeError, Message: message, Err: err}
}

// InfoNotice builds an info notice
func InfoNotice(message string) Notice {
	return Notice{Kind: NoticeInfo, Message: message}
}
