package arxiv

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	downloadFreshFor      = 24 * time.Hour
	partialSuffix         = ".part"
	metaSuffix            = ".meta"
	minValidPDFSize       = 1024
	defaultDownloadWindow = 90 * time.Second
)

// ErrDownloadFailed reports a transport, filesystem, or validation
// failure while fetching a paper PDF.
var ErrDownloadFailed = errors.New("paper download failed")

// Downloader fetches paper PDFs into a destination directory. Repeated
// fetches of the same URL revalidate with conditional requests and
// resume interrupted transfers.
type Downloader struct {
	dir    string
	client *http.Client
}

type downloadMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	FetchedAt    time.Time `json:"fetchedAt"`
	Size         int64     `json:"size"`
}

// NewDownloader prepares a downloader rooted at dir, creating it if needed.
func NewDownloader(dir string, client *http.Client) (*Downloader, error) {
	if dir == "" {
		dir = "downloads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultDownloadWindow}
	}
	return &Downloader{dir: dir, client: client}, nil
}

// Fetch downloads pdfURL and returns the local path. A fresh existing
// file short-circuits without touching the network.
func (d *Downloader) Fetch(ctx context.Context, pdfURL string) (string, error) {
	key := downloadKey(pdfURL)
	pdfPath, metaPath, partialPath := d.pathsFor(key)

	if info, err := os.Stat(pdfPath); err == nil && time.Since(info.ModTime()) < downloadFreshFor && info.Size() > 0 {
		return pdfPath, nil
	}

	meta, _ := readDownloadMeta(metaPath)
	info, _ := os.Stat(pdfPath)
	path, err := d.download(ctx, pdfURL, pdfPath, metaPath, partialPath, meta, info)
	if err == nil {
		return path, nil
	}
	if info != nil && info.Size() > 0 {
		return pdfPath, nil
	}
	return "", err
}

// LocalPath reports where a previously fetched PDF lives, or "" when it
// has not been downloaded yet.
func (d *Downloader) LocalPath(pdfURL string) string {
	pdfPath, _, _ := d.pathsFor(downloadKey(pdfURL))
	if info, err := os.Stat(pdfPath); err == nil && info.Size() > 0 {
		return pdfPath
	}
	return ""
}

func (d *Downloader) download(ctx context.Context, pdfURL, pdfPath, metaPath, partialPath string, meta downloadMeta, current os.FileInfo) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	var partialSize int64
	if info, err := os.Stat(partialPath); err == nil && info.Size() > 0 {
		partialSize = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", partialSize))
		if meta.ETag != "" {
			req.Header.Set("If-Range", meta.ETag)
		} else if meta.LastModified != "" {
			req.Header.Set("If-Range", meta.LastModified)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if current != nil && current.Size() > 0 {
			meta.FetchedAt = time.Now().UTC()
			writeDownloadMeta(metaPath, meta)
			return pdfPath, nil
		}
		return d.download(ctx, pdfURL, pdfPath, metaPath, partialPath, downloadMeta{}, nil)
	case http.StatusOK:
		return d.saveBody(resp, pdfPath, metaPath, partialPath, false)
	case http.StatusPartialContent:
		return d.saveBody(resp, pdfPath, metaPath, partialPath, partialSize > 0)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %s (%s)", ErrDownloadFailed, resp.Status, string(body))
	}
}

func (d *Downloader) saveBody(resp *http.Response, pdfPath, metaPath, partialPath string, appendExisting bool) (string, error) {
	// arXiv serves an HTML error page for withdrawn or missing papers.
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "html") {
		return "", fmt.Errorf("%w: received HTML instead of a PDF", ErrDownloadFailed)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	if info, err := os.Stat(partialPath); err == nil && info.Size() < minValidPDFSize {
		os.Remove(partialPath)
		return "", fmt.Errorf("%w: downloaded file too small (%d bytes)", ErrDownloadFailed, info.Size())
	}
	if err := validatePDF(partialPath); err != nil {
		os.Remove(partialPath)
		return "", err
	}
	if err := os.Rename(partialPath, pdfPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	meta := downloadMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now().UTC(),
	}
	if info, err := os.Stat(pdfPath); err == nil {
		meta.Size = info.Size()
	}
	if err := writeDownloadMeta(metaPath, meta); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return pdfPath, nil
}

func validatePDF(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer file.Close()

	magic := make([]byte, 5)
	if _, err := io.ReadFull(file, magic); err != nil || string(magic) != "%PDF-" {
		return fmt.Errorf("%w: file is not a PDF", ErrDownloadFailed)
	}
	return nil
}

// ExtractText returns the whitespace-normalized plain text of a
// downloaded PDF.
func ExtractText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(extraneousWhitespace.ReplaceAllString(builder.String(), " ")), nil
}

func (d *Downloader) pathsFor(key string) (string, string, string) {
	return filepath.Join(d.dir, key+".pdf"), filepath.Join(d.dir, key+metaSuffix), filepath.Join(d.dir, key+partialSuffix)
}

func downloadKey(pdfURL string) string {
	if id := extractIdentifier(pdfURL); id != "" {
		return sanitizeKey(id)
	}
	sum := sha1.Sum([]byte(pdfURL))
	return hex.EncodeToString(sum[:])
}

func sanitizeKey(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, ":", "-")
	value = strings.ReplaceAll(value, "..", "-")
	return value
}

func readDownloadMeta(path string) (downloadMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return downloadMeta{}, err
	}
	var meta downloadMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return downloadMeta{}, err
	}
	return meta, nil
}

func writeDownloadMeta(path string, meta downloadMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
