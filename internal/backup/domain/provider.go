package domain

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TokenUpdateFunc is invoked when the mail provider rotates the access token
// mid-call, so the new token can be written back to the account store.
type TokenUpdateFunc func(token *oauth2.Token) error

// Credentials is the OAuth material the provider needs for one account.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
}

// MessageData is a fully fetched, decoded remote message ready to persist.
type MessageData struct {
	GmailID    string
	ThreadID   string
	Subject    string
	Sender     string
	Recipients []string
	Cc         []string
	Bcc        []string
	BodyPlain  string
	BodyHTML   string
	DateReceived *time.Time
	DateSent     *time.Time
	Labels     []string
	IsRead      bool
	IsStarred   bool
	IsImportant bool
	IsSpam      bool
	IsTrash     bool
	Attachments []AttachmentData
}

// AttachmentData is a downloaded attachment with its integrity checksum.
type AttachmentData struct {
	Filename    string
	ContentType string
	Size        int64
	ContentID   string
	Data        []byte
	IsInline    bool
	Checksum    string
}

// MailProvider is the remote message-store client used by the sync engine.
type MailProvider interface {
	// ListMessageIDs performs one paginated listing call. An empty query lists
	// everything; pageToken "" starts from the first page. Returns the ids and
	// the next-page token ("" when exhausted).
	ListMessageIDs(ctx context.Context, creds Credentials, query, pageToken string, pageSize int64, onTokenRefresh TokenUpdateFunc) ([]string, string, error)

	// FetchMessage fetches and decodes full message content including
	// attachment bytes. Transient server errors are retried internally;
	// a vanished message yields errs.ErrNotFound.
	FetchMessage(ctx context.Context, creds Credentials, id string, onTokenRefresh TokenUpdateFunc) (*MessageData, error)

	// RefreshCredentials exchanges the refresh token for a new access token.
	// A revoked or invalid grant yields *gmail.AuthError with Reason
	// AuthRevoked; network failures yield AuthNetwork.
	RefreshCredentials(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// ToEmail converts fetched message data into the storable model.
func (m *MessageData) ToEmail() *Email {
	email := &Email{
		GmailID:      m.GmailID,
		ThreadID:     m.ThreadID,
		Subject:      m.Subject,
		Sender:       m.Sender,
		Recipients:   m.Recipients,
		Cc:           m.Cc,
		Bcc:          m.Bcc,
		BodyPlain:    m.BodyPlain,
		BodyHTML:     m.BodyHTML,
		DateReceived: m.DateReceived,
		DateSent:     m.DateSent,
		Labels:       m.Labels,
		IsRead:       m.IsRead,
		IsStarred:    m.IsStarred,
		IsImportant:  m.IsImportant,
		IsSpam:       m.IsSpam,
		IsTrash:      m.IsTrash,
	}
	for _, a := range m.Attachments {
		email.Attachments = append(email.Attachments, EmailAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			ContentID:   a.ContentID,
			FileData:    a.Data,
			IsInline:    a.IsInline,
			Checksum:    a.Checksum,
		})
	}
	return email
}
