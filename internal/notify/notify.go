package notify

import (
	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Variant is the severity of a toast.
type Variant string

const (
	Success Variant = "success"
	Error   Variant = "error"
	Warning Variant = "warning"
)

// Toast is one user-visible notification. Every terminal outcome of a
// mutation or refresh emits exactly one.
type Toast struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Variant Variant `json:"variant"`
}

// Notifier presents toasts to the user.
type Notifier interface {
	Notify(toast Toast)
}

// ConsoleNotifier prints toasts as colored status lines, the CLI surface.
type ConsoleNotifier struct{}

func (ConsoleNotifier) Notify(toast Toast) {
	switch toast.Variant {
	case Success:
		color.Green("✅ %s: %s", toast.Title, toast.Message)
	case Warning:
		color.Yellow("⚠️  %s: %s", toast.Title, toast.Message)
	default:
		color.Red("❌ %s: %s", toast.Title, toast.Message)
	}
}

// LogNotifier routes toasts into structured logs, the server surface.
type LogNotifier struct {
	Logger *zap.SugaredLogger
}

func (n LogNotifier) Notify(toast Toast) {
	if n.Logger == nil {
		return
	}
	switch toast.Variant {
	case Success:
		n.Logger.Infow(toast.Message, "toast", toast.Title, "variant", toast.Variant)
	case Warning:
		n.Logger.Warnw(toast.Message, "toast", toast.Title, "variant", toast.Variant)
	default:
		n.Logger.Errorw(toast.Message, "toast", toast.Title, "variant", toast.Variant)
	}
}

// Discard drops every toast; used where no presentation surface exists.
type Discard struct{}

func (Discard) Notify(Toast) {}

// Recorder captures toasts for assertions in tests and for returning the
// outcome of an HTTP-triggered operation to the caller.
type Recorder struct {
	Toasts []Toast
}

func (r *Recorder) Notify(toast Toast) {
	r.Toasts = append(r.Toasts, toast)
}

// Last returns the most recent toast, if any.
func (r *Recorder) Last() (Toast, bool) {
	if len(r.Toasts) == 0 {
		return Toast{}, false
	}
	return r.Toasts[len(r.Toasts)-1], true
}

// Reset drops captured toasts.
func (r *Recorder) Reset() {
	r.Toasts = nil
}
