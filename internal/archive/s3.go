package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/goccy/go-json"

	"fintrack/internal/backup"
	"fintrack/internal/config"
)

// S3Archive stores snapshot files and metadata documents as objects under a
// key prefix in an S3 bucket. Object writes on S3 are atomic, so no staging
// is needed here.
type S3Archive struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ backup.Archive = (*S3Archive)(nil)

// NewS3Archive creates an archive over the configured bucket. Credentials
// fall back to the default AWS provider chain when not set explicitly.
func NewS3Archive(ctx context.Context, cfg config.ArchiveConfig) (*S3Archive, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 archive requires a bucket name")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Archive{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		prefix:   strings.Trim(cfg.S3Prefix, "/"),
	}, nil
}

func (a *S3Archive) key(name string) string {
	if a.prefix == "" {
		return name
	}
	return a.prefix + "/" + name
}

func (a *S3Archive) Put(name string, r io.Reader, size int64) error {
	_, err := a.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(name)),
		Body:        r,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

func (a *S3Archive) Get(name string, w io.Writer) error {
	out, err := a.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name)),
	})
	if err != nil {
		return mapNotFound(name, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

func (a *S3Archive) Delete(name string) error {
	_, err := a.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name)),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

func (a *S3Archive) Stat(name string) (backup.Entry, error) {
	out, err := a.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name)),
	})
	if err != nil {
		return backup.Entry{}, mapNotFound(name, err)
	}

	entry := backup.Entry{Name: name}
	if out.ContentLength != nil {
		entry.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		entry.ModTime = *out.LastModified
	}
	return entry, nil
}

func (a *S3Archive) List() ([]backup.Entry, error) {
	var entries []backup.Entry
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(a.key(backup.SnapshotPrefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", a.bucket, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			name := path.Base(*obj.Key)
			if !backup.IsSnapshotName(name) {
				continue
			}
			entry := backup.Entry{Name: name}
			if obj.Size != nil {
				entry.Size = *obj.Size
			}
			if obj.LastModified != nil {
				entry.ModTime = *obj.LastModified
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (a *S3Archive) ReadDoc(name string, v any) error {
	var buf strings.Builder
	if err := a.Get(name, &buf); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(buf.String()), v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (a *S3Archive) WriteDoc(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return a.Put(name, strings.NewReader(string(data)), int64(len(data)))
}

// mapNotFound converts the S3 missing-object errors into fs.ErrNotExist so
// callers can use the same errors.Is check across archive backends.
func mapNotFound(name string, err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return fmt.Errorf("fetching %s: %w", name, err)
}

