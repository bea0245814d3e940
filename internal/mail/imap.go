package mail

import (
	"context"
	"fmt"
	"sort"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/rs/zerolog"
)

// DefaultMaxScan bounds how many of the newest messages are inspected.
const DefaultMaxScan = 200

// imapClient is the subset of *client.Client the fetcher uses.
type imapClient interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Search(criteria *imap.SearchCriteria) ([]uint32, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

// IMAPConfig holds the mailbox credentials.
type IMAPConfig struct {
	Addr     string
	User     string
	Password string
	Mailbox  string
	MaxScan  int
}

// IMAPFetcher searches a mailbox over IMAP with TLS.
type IMAPFetcher struct {
	cfg  IMAPConfig
	log  zerolog.Logger
	dial func(addr string) (imapClient, error)
}

// NewIMAPFetcher creates a fetcher. No connection is made until
// FetchAttachment is called.
func NewIMAPFetcher(cfg IMAPConfig, log zerolog.Logger) *IMAPFetcher {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.MaxScan <= 0 {
		cfg.MaxScan = DefaultMaxScan
	}
	return &IMAPFetcher{
		cfg: cfg,
		log: log,
		dial: func(addr string) (imapClient, error) {
			return client.DialTLS(addr, nil)
		},
	}
}

// FetchAttachment implements Fetcher. Body filters are narrowed on the
// server; subject filters also match attachment filenames, so those scan
// the newest messages directly.
func (f *IMAPFetcher) FetchAttachment(ctx context.Context, filter Filter) (*Attachment, error) {
	c, err := f.dial(f.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("FetchAttachment: connecting to %s: %w", f.cfg.Addr, err)
	}
	defer c.Logout()

	if err := c.Login(f.cfg.User, f.cfg.Password); err != nil {
		return nil, fmt.Errorf("FetchAttachment: logging in: %w", err)
	}
	mbox, err := c.Select(f.cfg.Mailbox, true)
	if err != nil {
		return nil, fmt.Errorf("FetchAttachment: selecting %s: %w", f.cfg.Mailbox, err)
	}
	if mbox.Messages == 0 {
		return nil, ErrNotFound
	}

	criteria := imap.NewSearchCriteria()
	if filter.Subject == "" && filter.Body != "" {
		criteria.Body = []string{filter.Body}
	} else {
		all := new(imap.SeqSet)
		all.AddRange(1, mbox.Messages)
		criteria.SeqNum = all
	}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("FetchAttachment: searching: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > f.cfg.MaxScan {
		ids = ids[:f.cfg.MaxScan]
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		att, err := f.fetchOne(c, id, filter)
		if err != nil {
			f.log.Warn().Err(err).Uint32("seq", id).Msg("skipping unreadable message")
			continue
		}
		if att != nil {
			f.log.Info().Str("filter", filter.String()).Str("filename", att.Filename).Str("subject", att.Subject).Msg("found attachment")
			return att, nil
		}
	}
	return nil, fmt.Errorf("FetchAttachment: %s: %w", filter, ErrNotFound)
}

func (f *IMAPFetcher) fetchOne(c imapClient, id uint32, filter Filter) (*Attachment, error) {
	seq := new(imap.SeqSet)
	seq.AddNum(id)
	section := &imap.BodySectionName{Peek: true}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seq, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		msg = m
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetching message %d: %w", id, err)
	}
	if msg == nil {
		return nil, nil
	}
	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %d has no body", id)
	}
	return matchMessage(body, filter)
}
