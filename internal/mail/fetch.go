// Package mail retrieves report attachments from the inbox and sends
// finished reports out.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

// ErrNotFound is returned when no message in the mailbox matches a filter.
var ErrNotFound = errors.New("no matching attachment found")

// DefaultExtensions are the attachment types the report parsers accept.
var DefaultExtensions = []string{".xlsx", ".csv"}

// Filter selects a message and one of its attachments.
//
// A message matches when its subject or one of its attachment filenames
// contains Subject (case-insensitive), or when its text body contains Body.
// Empty fields never match.
type Filter struct {
	Subject    string
	Body       string
	Extensions []string
}

// Filters for the reports the POS system and the manager send.
var (
	PayrollFilter  = Filter{Body: "The report Payroll is attached."}
	SalesFilter    = Filter{Body: "The report History Sales Overview is attached."}
	MenuFilter     = Filter{Body: "The report Menu Sales Analysis is attached."}
	ScheduleFilter = Filter{Subject: "ROSATI'S EMPLOYEE SCHEDULE"}
)

func (f Filter) String() string {
	if f.Subject != "" {
		return "subject:" + f.Subject
	}
	return "body:" + f.Body
}

func (f Filter) allowed(filename string) bool {
	exts := f.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Attachment is a file pulled out of a message.
type Attachment struct {
	Filename string
	Data     []byte
	Subject  string
	Date     time.Time
}

// Fetcher returns the first matching attachment of the newest matching
// message.
type Fetcher interface {
	FetchAttachment(ctx context.Context, f Filter) (*Attachment, error)
}

type part struct {
	filename string
	data     []byte
}

// matchMessage parses one RFC 822 message and returns the attachment the
// filter selects, or nil when the message does not match.
func matchMessage(r io.Reader, f Filter) (*Attachment, error) {
	mr, err := gomail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("matchMessage: parsing message: %w", err)
	}
	subject, _ := mr.Header.Subject()
	date, _ := mr.Header.Date()

	var body strings.Builder
	var attachments []part
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("matchMessage: reading part: %w", err)
		}
		switch h := p.Header.(type) {
		case *gomail.InlineHeader:
			ct, _, _ := h.ContentType()
			if ct == "text/plain" || ct == "" {
				b, _ := io.ReadAll(p.Body)
				body.Write(b)
			}
		case *gomail.AttachmentHeader:
			name, _ := h.Filename()
			if name == "" || !f.allowed(name) {
				continue
			}
			data, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("matchMessage: reading attachment %s: %w", name, err)
			}
			attachments = append(attachments, part{filename: name, data: data})
		}
	}
	if len(attachments) == 0 {
		return nil, nil
	}

	found := func(p part) *Attachment {
		return &Attachment{Filename: p.filename, Data: p.data, Subject: subject, Date: date}
	}

	if f.Subject != "" {
		needle := strings.ToLower(f.Subject)
		if strings.Contains(strings.ToLower(subject), needle) {
			return found(attachments[0]), nil
		}
		for _, a := range attachments {
			if strings.Contains(strings.ToLower(a.filename), needle) {
				return found(a), nil
			}
		}
	}
	if f.Body != "" && strings.Contains(body.String(), f.Body) {
		return found(attachments[0]), nil
	}
	return nil, nil
}

// MatchRaw applies the filter to a raw message.
func MatchRaw(raw []byte, f Filter) (*Attachment, error) {
	return matchMessage(bytes.NewReader(raw), f)
}
