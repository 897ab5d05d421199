package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
)

// Collaborator names used as metric labels.
const (
	CollaboratorObjectStorage  = "object_storage"
	CollaboratorPaymentGateway = "payment_gateway"
	CollaboratorMailer         = "mailer"
)

type instrumentedStorage struct {
	next objectstorage.ObjectStorage
	c    *Collector
}

// InstrumentStorage times every call made to next.
func InstrumentStorage(next objectstorage.ObjectStorage, c *Collector) objectstorage.ObjectStorage {
	return &instrumentedStorage{next: next, c: c}
}

func (s *instrumentedStorage) PresignUpload(ctx context.Context, req objectstorage.UploadRequest) (*objectstorage.PresignedURL, error) {
	start := time.Now()
	out, err := s.next.PresignUpload(ctx, req)
	s.c.ObserveCollaborator(CollaboratorObjectStorage, "presign_upload", err, time.Since(start))
	return out, err
}

func (s *instrumentedStorage) PresignDownload(ctx context.Context, key string, fileName string, ttl time.Duration) (*objectstorage.PresignedURL, error) {
	start := time.Now()
	out, err := s.next.PresignDownload(ctx, key, fileName, ttl)
	s.c.ObserveCollaborator(CollaboratorObjectStorage, "presign_download", err, time.Since(start))
	return out, err
}

func (s *instrumentedStorage) Head(ctx context.Context, key string) (*objectstorage.ObjectInfo, error) {
	start := time.Now()
	out, err := s.next.Head(ctx, key)
	s.c.ObserveCollaborator(CollaboratorObjectStorage, "head", err, time.Since(start))
	return out, err
}

func (s *instrumentedStorage) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.c.ObserveCollaborator(CollaboratorObjectStorage, "delete", err, time.Since(start))
	return err
}

type instrumentedGateway struct {
	next paymentgateway.PaymentGateway
	c    *Collector
}

// InstrumentGateway times every outbound call made to next. Webhook
// parsing is local and not recorded.
func InstrumentGateway(next paymentgateway.PaymentGateway, c *Collector) paymentgateway.PaymentGateway {
	return &instrumentedGateway{next: next, c: c}
}

func (g *instrumentedGateway) CreateIntent(ctx context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.Intent, error) {
	start := time.Now()
	out, err := g.next.CreateIntent(ctx, req)
	g.c.ObserveCollaborator(CollaboratorPaymentGateway, "create_intent", err, time.Since(start))
	return out, err
}

func (g *instrumentedGateway) GetIntentStatus(ctx context.Context, intentID string) (string, error) {
	start := time.Now()
	out, err := g.next.GetIntentStatus(ctx, intentID)
	g.c.ObserveCollaborator(CollaboratorPaymentGateway, "get_intent_status", err, time.Since(start))
	return out, err
}

func (g *instrumentedGateway) Transfer(ctx context.Context, req paymentgateway.TransferRequest) (string, error) {
	start := time.Now()
	out, err := g.next.Transfer(ctx, req)
	g.c.ObserveCollaborator(CollaboratorPaymentGateway, "transfer", err, time.Since(start))
	return out, err
}

func (g *instrumentedGateway) Refund(ctx context.Context, intentID string, metadata map[string]string) (string, error) {
	start := time.Now()
	out, err := g.next.Refund(ctx, intentID, metadata)
	g.c.ObserveCollaborator(CollaboratorPaymentGateway, "refund", err, time.Since(start))
	return out, err
}

func (g *instrumentedGateway) ParseWebhook(req *http.Request, payload []byte) (*paymentgateway.WebhookEvent, bool, error) {
	return g.next.ParseWebhook(req, payload)
}

type instrumentedMailer struct {
	next identityUsecases.Mailer
	c    *Collector
}

func InstrumentMailer(next identityUsecases.Mailer, c *Collector) identityUsecases.Mailer {
	return &instrumentedMailer{next: next, c: c}
}

func (m *instrumentedMailer) Send(ctx context.Context, to, subject, body string) error {
	start := time.Now()
	err := m.next.Send(ctx, to, subject, body)
	m.c.ObserveCollaborator(CollaboratorMailer, "send", err, time.Since(start))
	return err
}
