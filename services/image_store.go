package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxImageSize caps uploaded project images.
const MaxImageSize = 5 << 20

// AllowedImageTypes are the content types accepted for project images.
var AllowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// ObjectPutter is the part of the S3 API the image store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageStore uploads project images to an S3 compatible bucket and returns
// their public URL.
type ImageStore struct {
	client     ObjectPutter
	bucket     string
	prefix     string
	publicBase string
	logger     zerolog.Logger
}

// NewImageStore builds an S3 client from the default AWS credential chain.
// Settings:
//   - S3_BUCKET: bucket receiving images (required)
//   - S3_ENDPOINT: optional S3 compatible endpoint, e.g. Supabase Storage
//   - S3_PUBLIC_BASE_URL: base URL objects are served from
func NewImageStore(ctx context.Context, cfg map[string]string) (*ImageStore, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, errs.NewConfigMissingError("S3_BUCKET")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	endpoint := config.GetString(cfg, "S3_ENDPOINT", "")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := config.GetString(cfg, "S3_PUBLIC_BASE_URL",
		fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, awsCfg.Region))

	return NewImageStoreWithClient(client, bucket, publicBase), nil
}

// NewImageStoreWithClient wires an existing S3 client.
func NewImageStoreWithClient(client ObjectPutter, bucket, publicBase string) *ImageStore {
	return &ImageStore{
		client:     client,
		bucket:     bucket,
		prefix:     "projects",
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     log.With().Str("component", "imageStore").Logger(),
	}
}

// Upload stores data under a fresh key and returns its public URL. The content
// type is sniffed from the bytes, not taken from the client.
func (s *ImageStore) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) > MaxImageSize {
		return "", errs.NewMaxBodySizeExceededError(MaxImageSize)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), AllowedImageTypes...) {
		return "", errs.NewUnsupportedMediaTypeError(mtype.String(), AllowedImageTypes)
	}

	key := path.Join(s.prefix, uuid.NewString()+mtype.Extension())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mtype.String()),
	})
	if err != nil {
		return "", errs.NewServiceUnreachableError("s3", err)
	}

	url := s.publicBase + "/" + key
	s.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("uploaded project image")
	return url, nil
}
