package transcript

// Presentation carries the style class and icon a renderer attaches to a
// tool block header. The zero value is the fallback shell used for
// unrecognized statuses.
type Presentation struct {
	Class string
	Icon  string
}

// Present classifies a record status into its fixed presentation pair. It is
// total: anything outside the four known states yields the zero fallback
// instead of failing.
func Present(s Status) Presentation {
	switch s {
	case StatusPending:
		return Presentation{Class: "pending", Icon: "🕒"}
	case StatusRunning:
		return Presentation{Class: "running", Icon: "⏳"}
	case StatusFailed:
		return Presentation{Class: "failed", Icon: "❌"}
	case StatusCompleted:
		return Presentation{Class: "completed", Icon: "✅"}
	default:
		return Presentation{}
	}
}
