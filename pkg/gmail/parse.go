package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	backupdomain "mailvault/internal/backup/domain"

	"google.golang.org/api/gmail/v1"
)

// parseMessage maps message metadata into domain form. Bodies and attachments
// are filled in separately from the part tree.
func parseMessage(msg *gmail.Message) *backupdomain.MessageData {
	headers := msg.Payload.Headers

	data := &backupdomain.MessageData{
		GmailID:    msg.Id,
		ThreadID:   msg.ThreadId,
		Subject:    headerValue(headers, "Subject"),
		Sender:     headerValue(headers, "From"),
		Recipients: parseAddressList(headerValue(headers, "To")),
		Cc:         parseAddressList(headerValue(headers, "Cc")),
		Bcc:        parseAddressList(headerValue(headers, "Bcc")),
		Labels:     msg.LabelIds,
	}

	// InternalDate is Gmail's receipt timestamp in epoch millis.
	if msg.InternalDate > 0 {
		received := time.Unix(msg.InternalDate/1000, 0).UTC()
		data.DateReceived = &received
	}
	// An unparsable Date header leaves the sent timestamp absent.
	data.DateSent = parseDate(headerValue(headers, "Date"))

	data.IsRead = !hasLabel(msg.LabelIds, "UNREAD")
	data.IsStarred = hasLabel(msg.LabelIds, "STARRED")
	data.IsImportant = hasLabel(msg.LabelIds, "IMPORTANT")
	data.IsSpam = hasLabel(msg.LabelIds, "SPAM")
	data.IsTrash = hasLabel(msg.LabelIds, "TRASH")

	return data
}

// attachmentRef identifies an attachment part to download separately.
type attachmentRef struct {
	attachmentID string
	filename     string
	mimeType     string
	contentID    string
}

type partContent struct {
	plain       string
	html        string
	attachments []attachmentRef
}

// walkParts recursively extracts bodies and attachment references from a MIME
// part tree. It returns an accumulated result rather than mutating shared
// state, so the traversal stays a pure function of its input.
func walkParts(part *gmail.MessagePart) partContent {
	var out partContent
	if part == nil {
		return out
	}

	switch {
	case part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "":
		if decoded, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
			out.plain = string(decoded)
		}
	case part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "":
		if decoded, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
			out.html = string(decoded)
		}
	case part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "":
		contentID := strings.Trim(headerValue(part.Headers, "Content-ID"), "<>")
		out.attachments = append(out.attachments, attachmentRef{
			attachmentID: part.Body.AttachmentId,
			filename:     part.Filename,
			mimeType:     part.MimeType,
			contentID:    contentID,
		})
	}

	for _, sub := range part.Parts {
		child := walkParts(sub)
		if out.plain == "" {
			out.plain = child.plain
		}
		if out.html == "" {
			out.html = child.html
		}
		out.attachments = append(out.attachments, child.attachments...)
	}
	return out
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

// parseAddressList splits a recipient header into bare addresses. Tokens are
// comma-separated `Name <addr>` or bare-address forms; anything without an
// address is dropped. An empty header yields an empty list.
func parseAddressList(header string) []string {
	addresses := []string{}
	if header == "" {
		return addresses
	}
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if start := strings.Index(token, "<"); start >= 0 {
			if end := strings.Index(token, ">"); end > start {
				addresses = append(addresses, token[start+1:end])
				continue
			}
		}
		if strings.Contains(token, "@") {
			addresses = append(addresses, token)
		}
	}
	return addresses
}

// parseDate parses an RFC 2822 Date header; nil when absent or unparsable.
func parseDate(header string) *time.Time {
	if header == "" {
		return nil
	}
	t, err := mail.ParseDate(header)
	if err != nil {
		return nil
	}
	return &t
}

func hasLabel(labels []string, labelID string) bool {
	for _, label := range labels {
		if label == labelID {
			return true
		}
	}
	return false
}
