package mail

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// Reader fetches messages from a single IMAP mailbox. Messages are
// fetched with body peek so reading never marks them seen.
type Reader struct {
	client  *client.Client
	mailbox string
	log     *log.Logger
}

// Dial connects over TLS and logs in. Close the reader when done.
func Dial(host string, port int, username, password, mailbox string, logger *log.Logger) (*Reader, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", host, port), nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", host, err)
	}
	if err := c.Login(username, password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("logging in as %s: %w", username, err)
	}
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &Reader{client: c, mailbox: mailbox, log: logger}, nil
}

func (r *Reader) Close() error {
	return r.client.Logout()
}

// FetchOptions narrows which messages Fetch returns.
type FetchOptions struct {
	Since      time.Time
	UnreadOnly bool
	Limit      int  // newest N messages; 0 means all
	SkipSpam   bool // drop messages scoring at or above SpamThreshold
}

// Fetch returns matching messages, most recent first, each with its
// spam verdict attached.
func (r *Reader) Fetch(opts FetchOptions) ([]Email, error) {
	if _, err := r.client.Select(r.mailbox, true); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", r.mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	if !opts.Since.IsZero() {
		criteria.Since = opts.Since
	}
	if opts.UnreadOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}

	seqNums, err := r.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", r.mailbox, err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}
	if opts.Limit > 0 && len(seqNums) > opts.Limit {
		seqNums = seqNums[len(seqNums)-opts.Limit:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- r.client.Fetch(seqset, items, messages)
	}()

	var emails []Email
	for msg := range messages {
		email, err := r.toEmail(msg, section)
		if err != nil {
			r.log.Warn("skipping unreadable message", "seq", msg.SeqNum, "err", err)
			continue
		}
		FlagSpam(&email)
		if opts.SkipSpam && email.Spam {
			r.log.Debug("dropping spam", "seq", email.SeqNum, "score", email.SpamScore)
			continue
		}
		emails = append(emails, email)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching messages: %w", err)
	}

	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].Date.After(emails[j].Date)
	})
	return emails, nil
}

// MarkSeen flags the given messages as read.
func (r *Reader) MarkSeen(seqNums ...uint32) error {
	if len(seqNums) == 0 {
		return nil
	}
	if _, err := r.client.Select(r.mailbox, false); err != nil {
		return fmt.Errorf("selecting %s: %w", r.mailbox, err)
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := r.client.Store(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("marking seen: %w", err)
	}
	return nil
}

func (r *Reader) toEmail(msg *imap.Message, section *imap.BodySectionName) (Email, error) {
	if msg.Envelope == nil {
		return Email{}, fmt.Errorf("message %d has no envelope", msg.SeqNum)
	}

	email := Email{
		SeqNum:    msg.SeqNum,
		MessageID: msg.Envelope.MessageId,
		Subject:   msg.Envelope.Subject,
		Date:      msg.Envelope.Date,
	}
	if len(msg.Envelope.From) > 0 {
		email.From = toAddress(msg.Envelope.From[0])
	}
	for _, a := range msg.Envelope.To {
		email.To = append(email.To, toAddress(a))
	}
	for _, f := range msg.Flags {
		if f == imap.SeenFlag {
			email.Read = true
		}
	}

	if body := msg.GetBody(section); body != nil {
		text, err := io.ReadAll(body)
		if err != nil {
			return Email{}, fmt.Errorf("reading body: %w", err)
		}
		email.Text = string(text)
	}
	return email, nil
}

func toAddress(a *imap.Address) Address {
	return Address{Name: a.PersonalName, Address: a.Address()}
}
