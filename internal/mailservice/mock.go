package mailservice

import (
	"bytes"
	"sync"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/mock"
)

type MockTemplate struct {
	mock.Mock
}

func (m *MockTemplate) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	args := m.Called(name, data)
	return args.Get(0).(*bytes.Buffer), args.Get(1).(*bytes.Buffer), args.Get(2).(*bytes.Buffer), args.Error(3)
}

type MockDialer struct {
	mock.Mock
}

func (d *MockDialer) DialAndSend(m ...*mail.Message) error {
	args := d.Called(m)
	return args.Error(0)
}

// MockMailer records each send and fails recipients listed in FailFor,
// so tests can exercise partial fan-out failures.
type MockMailer struct {
	mu         sync.Mutex
	Recipients []string
	FailFor    map[string]error
}

func (m *MockMailer) Send(recipient string, data any, templateFile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Recipients = append(m.Recipients, recipient)

	if err, ok := m.FailFor[recipient]; ok {
		return err
	}

	return nil
}

func (m *MockMailer) SentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.Recipients))
	copy(out, m.Recipients)
	return out
}
