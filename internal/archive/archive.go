// Package archive uploads an encrypted snapshot of the ledger and ratings to
// S3-compatible storage before they are wiped by a reset.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/choreboard/internal/model"
	"github.com/dukerupert/choreboard/internal/store"
)

var (
	ErrDisabled = errors.New("archive storage not configured")
	ErrNotFound = errors.New("archive not found")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Config struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Passphrase string
}

func (c Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Snapshot is the decrypted archive content.
type Snapshot struct {
	CreatedAt time.Time             `json:"created_at"`
	Entries   []model.CompletedTask `json:"entries"`
	Ratings   []model.Rating        `json:"ratings"`
}

type Archiver struct {
	cfg      Config
	client   s3Client
	archives *store.ArchiveStore
	ledger   *store.LedgerStore
	ratings  *store.RatingStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewArchiver returns a disabled archiver when cfg lacks a bucket,
// credentials or passphrase.
func NewArchiver(cfg Config, archives *store.ArchiveStore, ledger *store.LedgerStore, ratings *store.RatingStore, logger *slog.Logger) *Archiver {
	a := &Archiver{
		cfg:      cfg,
		archives: archives,
		ledger:   ledger,
		ratings:  ratings,
		logger:   logger.With("component", "archive"),
		now:      time.Now,
	}
	if cfg.enabled() {
		a.client = newS3Client(cfg)
	}
	return a
}

func (a *Archiver) Enabled() bool {
	return a.client != nil
}

// Archive snapshots the ledger and ratings, encrypts the JSON and uploads
// it. The archive row tracks progress so failed uploads stay visible.
func (a *Archiver) Archive(ctx context.Context) (*model.LedgerArchive, error) {
	if a.client == nil {
		return nil, ErrDisabled
	}

	entries, err := a.ledger.List()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	ratings, err := a.ratings.List()
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	now := a.now().UTC()
	plaintext, err := json.Marshal(Snapshot{CreatedAt: now, Entries: entries, Ratings: ratings})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	filename := fmt.Sprintf("ledger-%s.json.enc", now.Format("2006-01-02T150405Z"))
	s3Key := "ledger/" + filename

	record, err := a.archives.Create(filename, s3Key, len(entries))
	if err != nil {
		return nil, fmt.Errorf("create archive record: %w", err)
	}

	fail := func(err error) (*model.LedgerArchive, error) {
		if uerr := a.archives.UpdateStatus(record.ID, model.ArchiveStatusFailed, err.Error()); uerr != nil {
			a.logger.Error("mark archive failed", "id", record.ID, "error", uerr)
		}
		a.logger.Error("archive failed", "id", record.ID, "key", s3Key, "error", err)
		return nil, err
	}

	if err := a.archives.UpdateStatus(record.ID, model.ArchiveStatusUploading, ""); err != nil {
		return fail(err)
	}

	data, err := Encrypt(plaintext, a.cfg.Passphrase)
	if err != nil {
		return fail(fmt.Errorf("encrypt: %w", err))
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.cfg.Bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fail(fmt.Errorf("upload to s3: %w", err))
	}

	if err := a.archives.UpdateCompleted(record.ID, int64(len(data))); err != nil {
		return nil, err
	}
	a.logger.Info("ledger archived", "id", record.ID, "key", s3Key, "entries", len(entries), "bytes", len(data))
	return a.archives.GetByID(record.ID)
}

// Fetch downloads and decrypts a completed archive.
func (a *Archiver) Fetch(ctx context.Context, id int64) (*Snapshot, error) {
	if a.client == nil {
		return nil, ErrDisabled
	}
	record, err := a.archives.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Status != model.ArchiveStatusCompleted {
		return nil, ErrNotFound
	}

	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.cfg.Bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	plaintext, err := Decrypt(data, a.cfg.Passphrase)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (a *Archiver) List(limit int) ([]model.LedgerArchive, error) {
	return a.archives.List(limit)
}
