// Package media prepares local images for posts and uploads them to an
// S3-compatible bucket.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // registers the webp decoder with image.Decode

	"ministagram/internal/config"
	"ministagram/internal/logger"
	"ministagram/internal/model"
)

const jpegQuality = 85

// ObjectPutter is the part of *s3.Client the uploader uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader normalises post images and stores them.
type Uploader struct {
	client    ObjectPutter
	bucket    string
	publicURL string
	newKey    func() string
	log       *zap.Logger
}

// NewUploader builds an S3 client from cfg. It returns model.ErrMediaDisabled when
// the bucket settings are incomplete.
func NewUploader(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Uploader, error) {
	if !cfg.MediaEnabled() {
		return nil, model.ErrMediaDisabled
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewUploaderWithClient(client, cfg.S3BucketName, cfg.S3PublicURL, log), nil
}

// NewUploaderWithClient wires an uploader around an existing client.
func NewUploaderWithClient(client ObjectPutter, bucket, publicURL string, log *zap.Logger) *Uploader {
	return &Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		newKey: func() string {
			return fmt.Sprintf("%s/%s%s", model.PostImageFolder, uuid.NewString(), model.PostImageExt)
		},
		log: logger.OrNop(log).Named("Media"),
	}
}

// UploadFile reads the image at path and uploads it.
func (u *Uploader) UploadFile(ctx context.Context, path string) (*model.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > model.MaxPostImageSizeBytes {
		return nil, model.ErrFileTooLarge
	}
	return u.Upload(ctx, f)
}

// Upload validates r as an image of at most 10MB, scales it down to the post width
// and stores it as JPEG.
func (u *Uploader) Upload(ctx context.Context, r io.Reader) (*model.UploadResult, error) {
	data, contentType, err := readAndValidateImage(r, model.MaxPostImageSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, model.PostImageMaxWidth, jpegQuality)
	if err != nil {
		return nil, err
	}

	key := u.newKey()
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(jpegBytes),
		ContentType:  aws.String(model.ContentTypeJPEG),
		CacheControl: aws.String(model.PostImageCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	u.log.Info("image uploaded",
		zap.String("key", key),
		zap.String("source_type", contentType),
		zap.Int("bytes", len(jpegBytes)))
	return &model.UploadResult{URL: u.publicURL + "/" + key, Key: key}, nil
}

// readAndValidateImage loads the upload into memory with size and type checks.
// The type is sniffed from content; file names are not trusted.
func readAndValidateImage(r io.Reader, maxSize int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", model.ErrFileTooLarge
	}

	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, "", model.ErrInvalidImageType
	}
	return data, contentType, nil
}

// resizeToJPEG shrinks images wider than maxWidth, keeping the aspect ratio, and
// encodes the result as JPEG. Narrower images are only re-encoded.
func resizeToJPEG(data []byte, maxWidth, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
