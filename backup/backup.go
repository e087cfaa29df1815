package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vitrine/config"
)

var (
	ErrNotFound    = errors.New("backup not found")
	ErrInvalidName = errors.New("invalid backup name")
)

const nameLayout = "20060102T150405.000Z"

// Object describes one stored snapshot.
type Object struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// objectAPI is the subset of *minio.Client the backup client uses.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Client stores exported content documents in a MinIO bucket.
type Client struct {
	api    objectAPI
	bucket string
	prefix string
}

// NewClient connects to MinIO and creates the bucket if it is missing.
func NewClient(ctx context.Context, cfg config.MinIOConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return newClient(ctx, mc, cfg.Bucket, cfg.Prefix)
}

func newClient(ctx context.Context, api objectAPI, bucket, prefix string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", bucket, err)
		}
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Client{api: api, bucket: bucket, prefix: prefix}, nil
}

// NameFor returns the snapshot name used for a backup taken at t.
func NameFor(t time.Time) string {
	return "portfolio-backup-" + t.UTC().Format(nameLayout) + ".json"
}

func validName(name string) bool {
	return name != "" &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.Contains(name, "..") &&
		strings.HasSuffix(name, ".json")
}

// Upload stores data as a new snapshot named after at.
func (c *Client) Upload(ctx context.Context, data []byte, at time.Time) (Object, error) {
	name := NameFor(at)
	_, err := c.api.PutObject(ctx, c.bucket, c.prefix+name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return Object{}, fmt.Errorf("put object %q: %w", name, err)
	}
	return Object{Name: name, Size: int64(len(data)), LastModified: at.UTC()}, nil
}

// List returns stored snapshots, newest first.
func (c *Client) List(ctx context.Context, limit int) ([]Object, error) {
	if limit <= 0 {
		limit = 50
	}

	objects := c.api.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: c.prefix, Recursive: true})
	result := make([]Object, 0)
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", c.prefix, object.Err)
		}
		name := path.Base(object.Key)
		if !validName(name) {
			continue
		}
		result = append(result, Object{Name: name, Size: object.Size, LastModified: object.LastModified})
	}

	// names embed the timestamp, so lexical order is chronological
	sort.Slice(result, func(i, j int) bool { return result[i].Name > result[j].Name })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Download returns the contents of a snapshot.
func (c *Client) Download(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}

	obj, err := c.api.GetObject(ctx, c.bucket, c.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		if IsNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object %q: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if IsNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read object %q: %w", name, err)
	}
	return data, nil
}

// Delete removes a snapshot. Missing snapshots are not an error.
func (c *Client) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	if err := c.api.RemoveObject(ctx, c.bucket, c.prefix+name, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", name, err)
	}
	return nil
}

// IsNoSuchKey reports whether err means the object does not exist.
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch strings.ToLower(strings.TrimSpace(minioErr.Code)) {
		case "nosuchkey", "notfound":
			return true
		}
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchkey") ||
		strings.Contains(lower, "specified key does not exist")
}
