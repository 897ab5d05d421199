package usecases

import "context"

// Mailer delivers plain-text mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// TokenGenerator issues high-entropy bearer secrets and their at-rest hash.
type TokenGenerator interface {
	Generate() (plain string, hash string, err error)
	Hash(plain string) string
}
