package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/pkg/config"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// ObjectStorageAdapter implements StorageProvider against an S3-compatible
// HTTP gateway. Download URLs are presigned with an HMAC over path and expiry.
type ObjectStorageAdapter struct {
	endpoint  string
	bucket    string
	accessKey string
	secretKey string
	client    *http.Client
}

// NewObjectStorageAdapter creates a new object-storage adapter
func NewObjectStorageAdapter(cfg *config.StorageConfig) providers.StorageProvider {
	return &ObjectStorageAdapter{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		bucket:    cfg.Bucket,
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload stores an object, reporting progress through the callback if set
func (a *ObjectStorageAdapter) Upload(ctx context.Context, path string, data io.Reader, size int64, onProgress providers.UploadProgressFunc) error {
	body := io.Reader(data)
	if onProgress != nil {
		body = &progressReader{reader: data, total: size, onProgress: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, a.objectURL(path), body)
	if err != nil {
		return err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	a.addAuth(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return apperrors.NewExternalError("object storage unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return apperrors.NewExternalError(fmt.Sprintf("object storage upload error: status %d", resp.StatusCode), nil)
	}

	return nil
}

// Download retrieves an object
func (a *ObjectStorageAdapter) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.objectURL(path), nil)
	if err != nil {
		return nil, err
	}
	a.addAuth(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("object storage unreachable", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("object %s not found", path))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperrors.NewExternalError(fmt.Sprintf("object storage download error: status %d", resp.StatusCode), nil)
	}

	return resp.Body, nil
}

// Delete removes an object
func (a *ObjectStorageAdapter) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.objectURL(path), nil)
	if err != nil {
		return err
	}
	a.addAuth(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return apperrors.NewExternalError("object storage unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return apperrors.NewExternalError(fmt.Sprintf("object storage delete error: status %d", resp.StatusCode), nil)
	}

	return nil
}

// GetURL returns a presigned, time-limited URL for an object
func (a *ObjectStorageAdapter) GetURL(_ context.Context, path string, expiresIn time.Duration) (string, error) {
	expires := time.Now().Add(expiresIn).Unix()
	signature := a.sign(path, expires)

	values := url.Values{}
	values.Set("access_key", a.accessKey)
	values.Set("expires", strconv.FormatInt(expires, 10))
	values.Set("signature", signature)

	return a.objectURL(path) + "?" + values.Encode(), nil
}

func (a *ObjectStorageAdapter) objectURL(path string) string {
	return a.endpoint + "/" + a.bucket + "/" + strings.TrimLeft(path, "/")
}

func (a *ObjectStorageAdapter) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(a.secretKey))
	fmt.Fprintf(mac, "%s/%s:%d", a.bucket, strings.TrimLeft(path, "/"), expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *ObjectStorageAdapter) addAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.accessKey)
}

// progressReader wraps a reader and reports transferred bytes
type progressReader struct {
	reader      io.Reader
	total       int64
	transferred int64
	onProgress  providers.UploadProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.transferred += int64(n)
		r.onProgress(providers.UploadProgress{
			TransferredBytes: r.transferred,
			TotalBytes:       r.total,
		})
	}
	return n, err
}

// ObjectPath builds a namespaced storage path: "<directory>/<entityID>/<ts>-<fileName>"
func ObjectPath(directory, entityID, fileName string) string {
	return fmt.Sprintf("%s/%s/%d-%s", directory, entityID, time.Now().UnixMilli(), fileName)
}

// Storage path namespaces
const (
	DirectoryProfilePictures = "profile-pictures"
	DirectoryBusinessImages  = "business-images"
)
