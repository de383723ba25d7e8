package greenapi

// Webhook type tags delivered through the notification queue.
const (
	WebhookIncomingMessage = "incomingMessageReceived"
)

// Message payload types carried by MessageData.TypeMessage.
const (
	TypeTextMessage = "textMessage"
)

// StateAuthorized is the instance state in which the account can send and
// receive messages.
const StateAuthorized = "authorized"

// Notification is one entry from the gateway delivery queue. It must be
// acknowledged by receipt id via DeleteNotification or the gateway will
// redeliver it on the next poll.
type Notification struct {
	ReceiptID int              `json:"receiptId"`
	Body      NotificationBody `json:"body"`
}

// NotificationBody is the webhook payload inside a notification.
type NotificationBody struct {
	TypeWebhook string      `json:"typeWebhook"`
	Timestamp   int64       `json:"timestamp,omitempty"`
	IDMessage   string      `json:"idMessage,omitempty"`
	SenderData  SenderData  `json:"senderData,omitempty"`
	MessageData MessageData `json:"messageData,omitempty"`
}

// SenderData identifies the counterpart the message came from.
type SenderData struct {
	ChatID     string `json:"chatId"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName,omitempty"`
	ChatName   string `json:"chatName,omitempty"`
}

// MessageData carries the typed message payload. Only plain text messages
// are of interest here; every other shape is acknowledged and dropped.
type MessageData struct {
	TypeMessage     string           `json:"typeMessage"`
	TextMessageData *TextMessageData `json:"textMessageData,omitempty"`
}

// TextMessageData is the body of a plain text message.
type TextMessageData struct {
	TextMessage string `json:"textMessage"`
}

// Text returns the plain message text and whether the payload carried one.
// Extended, media, and service payloads all report false.
func (b NotificationBody) Text() (string, bool) {
	if b.MessageData.TypeMessage != TypeTextMessage || b.MessageData.TextMessageData == nil {
		return "", false
	}
	return b.MessageData.TextMessageData.TextMessage, true
}

// SendMessageResult is the gateway response to a send request.
type SendMessageResult struct {
	IDMessage string `json:"idMessage"`
}

// Settings is the subset of instance settings the bot manages. Values use
// the gateway's "yes"/"no" convention; empty fields are left untouched.
type Settings struct {
	IncomingWebhook    string `json:"incomingWebhook,omitempty"`
	PollMessageWebhook string `json:"pollMessageWebhook,omitempty"`
}

// StateInstance is the gateway response to a state query.
type StateInstance struct {
	State string `json:"stateInstance"`
}
