// Package mail reads the business mailbox over IMAP and flags likely
// spam before the messages reach analysis.
package mail

import "time"

// Address is a single mailbox participant.
type Address struct {
	Name    string
	Address string
}

// Email is a fetched message with its spam verdict attached.
type Email struct {
	SeqNum    uint32
	MessageID string
	Subject   string
	From      Address
	To        []Address
	Date      time.Time
	Text      string

	Read        bool
	Spam        bool
	SpamScore   int
	SpamReasons []string
}
