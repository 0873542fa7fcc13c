package domain

// WebhookFormat tags the payload format a webhook expects.
// Only the native format exists for now.
type WebhookFormat string

const FormatRYGLFG WebhookFormat = "ryglfg"

func (f WebhookFormat) Valid() bool {
	return f == FormatRYGLFG
}

// Webhook is a registered notification endpoint. Webhooks live
// independently of announcements and are re-read from the store on every
// dispatch, never cached.
type Webhook struct {
	WID    int64
	URL    string
	Format WebhookFormat
}
