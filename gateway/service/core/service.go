package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"safetyhub/internal/detection"
	"safetyhub/internal/messaging/producer"
	"safetyhub/internal/models"
	"safetyhub/internal/secure"
	"safetyhub/internal/transform"
	"safetyhub/storage/store"
)

// WelcomeMessage is returned by the root endpoint
const WelcomeMessage = "Backend running successfully!"

// SaveStatus is reported after a log entry is stored
const SaveStatus = "saved"

// Service is the facade every transport calls into
type Service struct {
	store     store.Store
	encryptor secure.Encryptor
	batcher   *EventBatcher
	logger    *log.Logger
	now       func() time.Time
}

// Options tune the optional event publishing path
type Options struct {
	Producer           producer.Producer // nil disables publishing
	BatchSize          int
	BatchTimeout       time.Duration
	FlushChannelBuffer int
}

// NewService wires the store and encryptor; publishing starts only when opts.Producer is set
func NewService(s store.Store, enc secure.Encryptor, l *log.Logger, opts Options) *Service {
	svc := &Service{
		store:     s,
		encryptor: enc,
		logger:    l,
		now:       time.Now,
	}
	if opts.Producer != nil {
		svc.batcher = NewEventBatcher(opts.BatchSize, opts.BatchTimeout, opts.FlushChannelBuffer, opts.Producer, l)
	}
	return svc
}

// Scan runs the phishing awareness matcher
func (s *Service) Scan(text string) detection.ScanResult {
	return detection.Scan(text)
}

// CheckMisinformation runs the misinformation matcher
func (s *Service) CheckMisinformation(text string) detection.MisinformationResult {
	return detection.CheckMisinformation(text)
}

// Encrypt seals text under the process key
func (s *Service) Encrypt(text string) (string, error) {
	token, err := s.encryptor.Encrypt(text)
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}
	return token, nil
}

// Hash fingerprints text with SHA-256
func (s *Service) Hash(text string) string {
	return secure.Hash(text)
}

// Summarize shortens text
func (s *Service) Summarize(text string) string {
	return transform.Summarize(text)
}

// Rephrase tidies text
func (s *Service) Rephrase(text string) string {
	return transform.Rephrase(text)
}

// SaveLog appends an entry and, when publishing is enabled, queues its event
func (s *Service) SaveLog(ctx context.Context, text, category string) error {
	entry := models.LogEntry{Text: text, Category: category}
	if err := s.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to save log entry: %w", err)
	}

	if s.batcher != nil {
		s.batcher.Submit(models.NewLogEvent(uuid.NewString(), entry, s.now()))
	}
	return nil
}

// Logs returns every saved entry, oldest first
func (s *Service) Logs(ctx context.Context) ([]models.LogEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}
	return entries, nil
}

// Close flushes pending events
func (s *Service) Close() {
	if s.batcher != nil {
		s.batcher.Close()
	}
}
