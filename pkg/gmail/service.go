package gmail

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	backupdomain "mailvault/internal/backup/domain"
	"mailvault/internal/errs"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	fetchMaxAttempts = 3
	fetchBackoffBase = 500 * time.Millisecond
)

// Service is the Gmail-backed MailProvider.
type Service struct {
	clientID     string
	clientSecret string
	log          *logrus.Logger
}

func NewService(clientID, clientSecret string, log *logrus.Logger) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log,
	}
}

// notifyTokenSource wraps an oauth2 source and fires a callback whenever the
// access token rotates, so refreshed tokens reach the account store.
type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback backupdomain.TokenUpdateFunc
	log      *logrus.Logger
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			s.log.WithError(err).Warn("failed to persist rotated access token")
		}
	}
	return t, nil
}

func (s *Service) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}
}

// gmailService builds a live API handle from the stored token. The oauth2
// transport refreshes expired access tokens on first use; rotations are
// reported through onTokenRefresh.
func (s *Service) gmailService(ctx context.Context, creds backupdomain.Credentials, onTokenRefresh backupdomain.TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}
	if creds.Expiry != nil {
		token.Expiry = *creds.Expiry
	} else if creds.RefreshToken != "" {
		// Unknown expiry: force a refresh up front rather than risk a 401
		// mid-sync.
		token.Expiry = time.Now()
	}

	wrapped := &notifyTokenSource{
		src:      s.oauthConfig().TokenSource(ctx, token),
		current:  token,
		callback: onTokenRefresh,
		log:      s.log,
	}

	client := oauth2.NewClient(ctx, wrapped)
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// RefreshCredentials exchanges the refresh token for a fresh access token.
func (s *Service) RefreshCredentials(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := s.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, classifyRefreshError(err)
	}
	return token, nil
}

// Profile returns the mailbox address the credentials belong to.
func (s *Service) Profile(ctx context.Context, creds backupdomain.Credentials, onTokenRefresh backupdomain.TokenUpdateFunc) (string, error) {
	srv, err := s.gmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return "", err
	}
	profile, err := srv.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to fetch Gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// ListMessageIDs performs one paginated listing call.
func (s *Service) ListMessageIDs(ctx context.Context, creds backupdomain.Credentials, query, pageToken string, pageSize int64, onTokenRefresh backupdomain.TokenUpdateFunc) ([]string, string, error) {
	srv, err := s.gmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, "", err
	}

	call := srv.Users.Messages.List("me").MaxResults(pageSize)
	if query != "" {
		call = call.Q(query)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("unable to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, resp.NextPageToken, nil
}

// FetchMessage fetches full message content and downloads every attachment.
// Transient server errors are retried with exponential backoff; a vanished
// message yields errs.ErrNotFound.
func (s *Service) FetchMessage(ctx context.Context, creds backupdomain.Credentials, id string, onTokenRefresh backupdomain.TokenUpdateFunc) (*backupdomain.MessageData, error) {
	srv, err := s.gmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	var msg *gmail.Message
	err = s.withRetry(ctx, id, func() error {
		var callErr error
		msg, callErr = srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return nil, err
	}

	data := parseMessage(msg)

	body := walkParts(msg.Payload)
	data.BodyPlain = body.plain
	data.BodyHTML = body.html

	for _, ref := range body.attachments {
		att, err := s.downloadAttachment(ctx, srv, id, ref)
		if err != nil {
			// A single bad attachment should not lose the message.
			s.log.WithFields(logrus.Fields{
				"message_id": id,
				"filename":   ref.filename,
			}).WithError(err).Warn("skipping attachment download")
			continue
		}
		data.Attachments = append(data.Attachments, *att)
	}

	return data, nil
}

// downloadAttachment fetches attachment bytes and stamps a SHA-256 checksum.
func (s *Service) downloadAttachment(ctx context.Context, srv *gmail.Service, messageID string, ref attachmentRef) (*backupdomain.AttachmentData, error) {
	var body *gmail.MessagePartBody
	err := s.withRetry(ctx, messageID, func() error {
		var callErr error
		body, callErr = srv.Users.Messages.Attachments.Get("me", messageID, ref.attachmentID).Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return nil, err
	}

	raw, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode attachment data: %w", err)
	}

	sum := sha256.Sum256(raw)
	return &backupdomain.AttachmentData{
		Filename:    ref.filename,
		ContentType: ref.mimeType,
		Size:        int64(len(raw)),
		ContentID:   ref.contentID,
		Data:        raw,
		IsInline:    ref.contentID != "",
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// withRetry runs one API call with bounded exponential backoff. 404 maps to
// errs.ErrNotFound; other client errors propagate immediately.
func (s *Service) withRetry(ctx context.Context, id string, fn func() error) error {
	delay := fetchBackoffBase
	var lastErr error
	for attempt := 1; attempt <= fetchMaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if isNotFound(err) {
			return fmt.Errorf("message %s: %w", id, errs.ErrNotFound)
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		if attempt == fetchMaxAttempts {
			break
		}
		s.log.WithFields(logrus.Fields{
			"message_id": id,
			"attempt":    attempt,
		}).WithError(err).Warn("transient Gmail error, retrying")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return fmt.Errorf("message %s failed after %d attempts: %w", id, fetchMaxAttempts, lastErr)
}
