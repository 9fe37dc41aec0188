package notification

// Kind selects the template used to render a message.
type Kind string

const (
	KindConfirmEmail Kind = "confirm_email"
)

// Message is what the verification workflow hands to a NotificationGateway.
type Message struct {
	Kind          Kind
	To            string
	RecipientName string
	Subject       string
	Link          string
}
