package domain

// SessionState enumerates where a buyer is in the purchase conversation.
// There is no explicit terminal state: a finished or cancelled session is
// simply removed, so a later /start builds a fresh one with nothing leaking
// over.
type SessionState int

const (
	// StateMainMenu offers the fixed menu of actions (about, buy).
	StateMainMenu SessionState = iota
	// StateRegionChoice is the purchase sub-flow offering a region choice.
	StateRegionChoice
)

// BuyerSession is the ephemeral per-conversation record. It lives only in
// the dispatcher goroutine's session map and is never persisted.
type BuyerSession struct {
	BuyerID   int64
	ChatID    int64
	FirstName string
	LastName  string
	State     SessionState
}
