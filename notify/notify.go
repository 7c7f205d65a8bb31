package notify

import (
	"log"
	"sync"
)

// Notifier dispatches outbound notifications to a submitter. Delivery is
// fire-and-forget: a failed send never rolls back the status change that
// triggered it.
type Notifier interface {
	Email(to, subject, body string) error
	SMS(to, message string) error
}

// LogNotifier simulates delivery by writing the destination/content pairing
// to the process log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Email(to, subject, body string) error {
	log.Printf("Sending email to %s:", to)
	log.Printf("Subject: %s", subject)
	log.Printf("Message: %s", body)
	return nil
}

func (n *LogNotifier) SMS(to, message string) error {
	log.Printf("Sending SMS to %s: %s", to, message)
	return nil
}

// SentEmail is one recorded email delivery.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// SentSMS is one recorded SMS delivery.
type SentSMS struct {
	To      string
	Message string
}

// Recorder captures deliveries for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	Emails []SentEmail
	SMSes  []SentSMS
	// Err, when set, is returned from every send.
	Err error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Email(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.Emails = append(r.Emails, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (r *Recorder) SMS(to, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.SMSes = append(r.SMSes, SentSMS{To: to, Message: message})
	return nil
}
