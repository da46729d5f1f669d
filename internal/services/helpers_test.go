package services

import (
	"errors"
	"sync"
	"testing"

	"finflow/internal/logger"
	"finflow/internal/models"
)

func init() {
	logger.Init("test")
}

// sentMessage is one captured notification.
type sentMessage struct {
	recipients []string
	subject    string
	body       string
}

// recordingNotifier captures notifications and can be told to fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (n *recordingNotifier) Notify(recipients []string, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentMessage{recipients: recipients, subject: subject, body: body})
	return nil
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

func principalOf(p *models.Personnel) models.Principal {
	return p.Principal()
}

func reloadRequest(t *testing.T, svc DisbursementServicer, id string) *models.DisbursementRequest {
	t.Helper()
	r, err := svc.GetRequest(id)
	if err != nil {
		t.Fatalf("failed to reload request: %v", err)
	}
	return r
}
