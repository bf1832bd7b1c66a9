package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestParseAddressList(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{"empty", "", []string{}},
		{"bare address", "a@example.com", []string{"a@example.com"}},
		{"named address", "Alice <alice@example.com>", []string{"alice@example.com"}},
		{
			"mixed list",
			"Alice <alice@example.com>, bob@example.com, Carol <carol@example.com>",
			[]string{"alice@example.com", "bob@example.com", "carol@example.com"},
		},
		{"garbage dropped", "undisclosed-recipients:;", []string{}},
		{"unclosed bracket", "Broken <nope", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseAddressList(tt.header))
		})
	}
}

func TestParseDate(t *testing.T) {
	got := parseDate("Tue, 10 Mar 2026 15:04:05 +0700")
	require.NotNil(t, got)
	require.Equal(t, 2026, got.Year())

	require.Nil(t, parseDate(""))
	require.Nil(t, parseDate("not a date"))
}

func TestParseMessage_HeadersAndFlags(t *testing.T) {
	msg := &gmail.Message{
		Id:           "g1",
		ThreadId:     "t1",
		InternalDate: 1767225600000, // 2026-01-01T00:00:00Z in millis
		LabelIds:     []string{"INBOX", "STARRED", "IMPORTANT"},
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Quarterly report"},
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "To", Value: "bob@example.com, Carol <carol@example.com>"},
				{Name: "Date", Value: "Thu, 01 Jan 2026 07:00:00 +0700"},
			},
		},
	}

	data := parseMessage(msg)
	require.Equal(t, "g1", data.GmailID)
	require.Equal(t, "t1", data.ThreadID)
	require.Equal(t, "Quarterly report", data.Subject)
	require.Equal(t, "Alice <alice@example.com>", data.Sender)
	require.Equal(t, []string{"bob@example.com", "carol@example.com"}, data.Recipients)

	require.NotNil(t, data.DateReceived)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *data.DateReceived)
	require.NotNil(t, data.DateSent)
	require.True(t, data.DateSent.Equal(*data.DateReceived))

	// No UNREAD label means the message was read.
	require.True(t, data.IsRead)
	require.True(t, data.IsStarred)
	require.True(t, data.IsImportant)
	require.False(t, data.IsSpam)
	require.False(t, data.IsTrash)
}

func TestParseMessage_UnreadWithoutDates(t *testing.T) {
	msg := &gmail.Message{
		Id:       "g2",
		LabelIds: []string{"INBOX", "UNREAD"},
		Payload:  &gmail.MessagePart{},
	}

	data := parseMessage(msg)
	require.False(t, data.IsRead)
	require.Nil(t, data.DateReceived)
	require.Nil(t, data.DateSent)
}

func TestWalkParts_SimpleBody(t *testing.T) {
	part := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: b64("hello")},
	}

	out := walkParts(part)
	require.Equal(t, "hello", out.plain)
	require.Empty(t, out.html)
	require.Empty(t, out.attachments)
}

func TestWalkParts_NestedMultipartWithAttachments(t *testing.T) {
	part := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: b64("plain body")},
					},
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: b64("<p>html body</p>")},
					},
				},
			},
			{
				MimeType: "application/pdf",
				Filename: "report.pdf",
				Body:     &gmail.MessagePartBody{AttachmentId: "att-1"},
			},
			{
				MimeType: "image/png",
				Filename: "logo.png",
				Headers: []*gmail.MessagePartHeader{
					{Name: "Content-ID", Value: "<logo@mailer>"},
				},
				Body: &gmail.MessagePartBody{AttachmentId: "att-2"},
			},
		},
	}

	out := walkParts(part)
	require.Equal(t, "plain body", out.plain)
	require.Equal(t, "<p>html body</p>", out.html)
	require.Len(t, out.attachments, 2)
	require.Equal(t, "att-1", out.attachments[0].attachmentID)
	require.Equal(t, "report.pdf", out.attachments[0].filename)
	// Content-ID is unwrapped from its angle brackets.
	require.Equal(t, "logo@mailer", out.attachments[1].contentID)
}

func TestWalkParts_FirstBodyWins(t *testing.T) {
	part := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("first")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("second")}},
		},
	}

	out := walkParts(part)
	require.Equal(t, "first", out.plain)
}

func TestWalkParts_Nil(t *testing.T) {
	out := walkParts(nil)
	require.Empty(t, out.plain)
	require.Empty(t, out.attachments)
}
