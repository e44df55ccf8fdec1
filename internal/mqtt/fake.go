package mqtt

import (
	"sync"

	"coffeebot/internal/models"
)

// FakePublisher records published announcements for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	Announcements []models.Announcement
	Payloads      [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	Closed bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(a models.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(a)
	if err != nil {
		return err
	}
	f.Announcements = append(f.Announcements, a)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
