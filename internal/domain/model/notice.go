package model

// Notification types emitted to clients.
const (
	NoticeYouAreHost = "you_are_host"
	NoticeText       = "text"
	NoticeLockTyping = "lock_typing"
	NoticeRounds     = "rounds"
	NoticeError      = "error"
)

// Notice is one outbound message. Data is encoded as-is under "data".
type Notice struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// HostStatus is the payload of you_are_host.
type HostStatus struct {
	IsHost bool `json:"is_host"`
}

// ErrorBody is the payload of error notices.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HostNotice tells one connection whether it holds the host role.
func HostNotice(isHost bool) Notice {
	return Notice{Type: NoticeYouAreHost, Data: HostStatus{IsHost: isHost}}
}

// TextNotice carries the prompt of a freshly started round.
func TextNotice(prompt string) Notice {
	return Notice{Type: NoticeText, Data: prompt}
}

// LockNotice instructs clients to stop accepting input.
func LockNotice() Notice {
	return Notice{Type: NoticeLockTyping}
}

// RoundsNotice carries the final round result.
func RoundsNotice(r RoundResult) Notice {
	return Notice{Type: NoticeRounds, Data: r}
}

// ErrorNotice reports a rejected client message back to its sender.
func ErrorNotice(code, message string) Notice {
	return Notice{Type: NoticeError, Data: ErrorBody{Code: code, Message: message}}
}
