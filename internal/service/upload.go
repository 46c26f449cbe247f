package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/config"
	"github.com/daypilot/backend/internal/live"
)

const presignExpiry = 15 * time.Minute

// ProgressFunc receives upload progress as a whole percentage. Values only
// ever increase and the last call is 100.
type ProgressFunc func(percent int)

// UploadResult describes a stored object.
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// ObjectPutter is the part of the S3 client uploads need.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner issues temporary download links.
type Presigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// UploadService streams user media to S3.
type UploadService struct {
	client    ObjectPutter
	presigner Presigner
	bucket    string
	publicURL func(key string) string
	maxBytes  int64
	pub       live.Publisher
	log       logrus.FieldLogger
}

var _ IUploadService = (*UploadService)(nil)

// NewUploadService returns a service writing to s3cfg's bucket. With a nil
// s3cfg every call fails with ErrUploadsDisabled.
func NewUploadService(s3cfg *config.S3Config, maxBytes int64, pub live.Publisher, log logrus.FieldLogger) *UploadService {
	svc := &UploadService{
		maxBytes: maxBytes,
		pub:      pub,
		log:      log.WithField("service", "uploads"),
	}
	if s3cfg != nil {
		svc.client = s3cfg.Client
		svc.presigner = s3cfg
		svc.bucket = s3cfg.BucketName
		svc.publicURL = s3cfg.PublicURL
	}
	return svc
}

func userPrefix(userID uuid.UUID) string {
	return "uploads/" + userID.String() + "/"
}

func allowedMedia(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}

func sizeOf(file *UploadFile) (int64, error) {
	if file.Size > 0 {
		return file.Size, nil
	}
	end, err := file.Body.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("measure upload: %w", err)
	}
	if _, err := file.Body.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind upload: %w", err)
	}
	return end, nil
}

// Upload validates and stores file under the user's prefix, reporting
// progress to progress (may be nil) and as live events.
func (s *UploadService) Upload(ctx context.Context, userID uuid.UUID, file *UploadFile, progress ProgressFunc) (*UploadResult, error) {
	if s.client == nil {
		return nil, ErrUploadsDisabled
	}
	if file == nil || file.Body == nil {
		return nil, invalid("file", "is required")
	}
	if !allowedMedia(file.ContentType) {
		return nil, invalid("file", "must be an image or a video, got %q", file.ContentType)
	}
	size, err := sizeOf(file)
	if err != nil {
		return nil, err
	}
	switch {
	case size == 0:
		return nil, invalid("file", "is empty")
	case s.maxBytes > 0 && size > s.maxBytes:
		return nil, invalid("file", "exceeds the %d byte limit", s.maxBytes)
	}

	key := userPrefix(userID) + uuid.NewString() + strings.ToLower(path.Ext(file.Name))
	logger := s.log.WithFields(logrus.Fields{"user_id": userID, "key": key, "size": size})

	report := func(pct int) {
		if progress != nil {
			progress(pct)
		}
		publish(s.pub, userID, live.CollectionUploads, live.ActionProgress, key, map[string]int{"percent": pct})
	}
	body := &progressReader{r: file.Body, total: size, report: report}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(file.ContentType),
		ContentLength: aws.Int64(size),
	}, s3.WithAPIOptions(v4.SwapComputePayloadSHA256ForUnsignedPayloadMiddleware))
	if err != nil {
		logger.WithError(err).Error("upload failed")
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	body.finish()

	logger.Info("upload stored")
	result := &UploadResult{
		Key:         key,
		URL:         s.publicURL(key),
		Size:        size,
		ContentType: file.ContentType,
	}
	publish(s.pub, userID, live.CollectionUploads, live.ActionCreated, key, result)
	return result, nil
}

// Presign returns a short-lived download link for one of the user's objects.
// Keys outside the user's prefix are reported as not found.
func (s *UploadService) Presign(ctx context.Context, userID uuid.UUID, key string) (string, error) {
	if s.presigner == nil {
		return "", ErrUploadsDisabled
	}
	if !strings.HasPrefix(key, userPrefix(userID)) || strings.Contains(key, "..") {
		return "", fmt.Errorf("object %s: %w", key, ErrNotFound)
	}
	return s.presigner.GeneratePresignedURL(ctx, key, presignExpiry)
}

// progressReader counts bytes as the SDK reads them. A rewind on retry moves
// the count back but reported percentages never go down.
type progressReader struct {
	r      io.ReadSeeker
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct > p.last {
		p.last = pct
		p.report(pct)
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.r.Seek(offset, whence)
	if err == nil {
		p.read = pos
	}
	return pos, err
}

func (p *progressReader) finish() {
	if p.last < 100 {
		p.last = 100
		p.report(100)
	}
}
