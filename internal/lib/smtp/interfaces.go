// Package smtp provides the STARTTLS transport the notifier sends mail
// through.
package smtp

import "io"

// Client is the subset of *smtp.Client the sender needs; mocked in tests.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface opens authenticated SMTP connections.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
