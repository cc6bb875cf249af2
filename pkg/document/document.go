// Package document copies tender documents into the blob store and returns
// their public URLs.
package document

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint for object keys, not security
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/scraper-sdk/pkg/apperror"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/logger"
	"github.com/ahmethakanbesel/scraper-sdk/pkg/storage"
)

const (
	defaultExt         = ".pdf"
	defaultContentType = "application/octet-stream"
	defaultLimit       = 4
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".zip":  "application/zip",
	".rar":  "application/x-rar-compressed",
}

// Source names one document. Exactly one of DownloadURL and FilePath is set.
type Source struct {
	DownloadURL  string
	FilePath     string
	TenderNumber string
	Origin       string
}

func (s Source) Validate() *apperror.AppError {
	if s.DownloadURL == "" && s.FilePath == "" {
		return apperror.New(apperror.Validation, "either download url or file path must be provided")
	}
	if s.DownloadURL != "" && s.FilePath != "" {
		return apperror.New(apperror.Validation, "only one of download url or file path should be provided")
	}
	if s.TenderNumber == "" {
		return apperror.New(apperror.Validation, "tender number is required")
	}
	if s.Origin == "" {
		return apperror.New(apperror.Validation, "website origin is required")
	}
	return nil
}

type Result struct {
	URL string `json:"url"`
}

type Uploader struct {
	bucket     storage.Bucket
	httpClient *http.Client
	log        logger.Interface
	now        func() time.Time
}

type Option func(*Uploader)

func WithHTTPClient(hc *http.Client) Option {
	return func(u *Uploader) { u.httpClient = hc }
}

func WithLogger(l logger.Interface) Option {
	return func(u *Uploader) { u.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(u *Uploader) { u.now = now }
}

func NewUploader(bucket storage.Bucket, opts ...Option) *Uploader {
	u := &Uploader{
		bucket:     bucket,
		httpClient: &http.Client{Timeout: time.Minute},
		log:        logger.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Upload fetches the document, stores it under
// {origin}/{tender}/{unixMillis}-{md5[:8]}{ext} and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, src Source) (*Result, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	data, from, err := u.read(ctx, src)
	if err != nil {
		u.log.Error("document upload failed", "tender", src.TenderNumber, "origin", src.Origin, "error", err)
		return nil, fmt.Errorf("upload document: %w", err)
	}

	ext := Extension(from)
	key := Key(src.Origin, src.TenderNumber, u.now(), data, ext)

	if err := u.bucket.Put(ctx, key, bytes.NewReader(data), int64(len(data)), ContentType(ext)); err != nil {
		u.log.Error("document upload failed", "tender", src.TenderNumber, "origin", src.Origin, "error", err)
		return nil, fmt.Errorf("upload document: %w", err)
	}

	u.log.Debug("document uploaded", "key", key, "bytes", len(data))
	return &Result{URL: u.bucket.PublicURL(key)}, nil
}

// UploadAll uploads sources with at most limit transfers in flight and
// returns results in input order. The first failure cancels the rest.
func (u *Uploader) UploadAll(ctx context.Context, sources []Source, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	results := make([]Result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			res, err := u.Upload(gctx, src)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (u *Uploader) read(ctx context.Context, src Source) ([]byte, string, error) {
	if src.FilePath != "" {
		data, err := os.ReadFile(src.FilePath)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", src.FilePath, err)
		}
		return data, src.FilePath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.DownloadURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", src.DownloadURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", apperror.NewTransport(
			fmt.Sprintf("download %s: status %d", src.DownloadURL, resp.StatusCode), resp.StatusCode, nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read download body: %w", err)
	}
	return data, src.DownloadURL, nil
}

// Key derives the object key for a document.
func Key(origin, tender string, at time.Time, data []byte, ext string) string {
	sum := md5.Sum(data) //nolint:gosec
	return fmt.Sprintf("%s/%s/%d-%s%s", origin, tender, at.UnixMilli(), hex.EncodeToString(sum[:])[:8], ext)
}

// Extension returns the file extension of a URL path or file path, or .pdf
// when there is none.
func Extension(source string) string {
	var ext string
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		ext = path.Ext(u.Path)
	} else {
		ext = filepath.Ext(source)
	}
	if ext == "" {
		return defaultExt
	}
	return ext
}

func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return defaultContentType
}
