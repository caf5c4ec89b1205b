package repositories

import (
	"errors"
	"time"

	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
)

const messagesResource = "messages"

// MessageRepository handles the messages resource file.
type MessageRepository struct{}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func loadMessages() ([]models.Message, error) {
	messages := []models.Message{}
	if err := jsonstore.Load(messagesResource, &messages); err != nil && !errors.Is(err, jsonstore.ErrCorrupt) {
		return nil, err
	}
	return messages, nil
}

// Post appends a message from sender and returns it. After the insert the
// log is truncated to the most recent models.MessageLogCap entries before
// persisting.
func (r *MessageRepository) Post(sender, text string) (models.Message, error) {
	var posted models.Message

	err := jsonstore.Mutate(messagesResource, func() error {
		messages, err := loadMessages()
		if err != nil {
			return err
		}

		next := 0
		for _, m := range messages {
			if m.ID > next {
				next = m.ID
			}
		}

		posted = models.Message{
			ID:        next + 1,
			Username:  sender,
			Message:   text,
			CreatedAt: time.Now().UTC(),
		}
		messages = append(messages, posted)

		if len(messages) > models.MessageLogCap {
			messages = messages[len(messages)-models.MessageLogCap:]
		}
		return jsonstore.Save(messagesResource, messages)
	})
	return posted, err
}

// All returns the retained log in insertion order.
func (r *MessageRepository) All() ([]models.Message, error) {
	return loadMessages()
}
