package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const maxFilenameLen = 200

var illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// DownloadImages fetches the given image URLs into dir, stopping once the
// client's image cap is reached. Individual download failures are logged
// and skipped. Returns how many files were saved.
func (c *Client) DownloadImages(ctx context.Context, urls []string, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create download directory: %w", err)
	}

	saved := 0
	for i, imageURL := range urls {
		if saved >= c.maxImages {
			c.log.Info().Int("max", c.maxImages).Msg("image cap reached")
			break
		}
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		name := downloadFilename(imageURL, i)
		dest := filepath.Join(dir, name)
		for n := 0; fileExists(dest); n++ {
			dest = filepath.Join(dir, fmt.Sprintf("%03d_%02d_%s", i, n, name))
		}
		if err := c.downloadOne(ctx, imageURL, dest); err != nil {
			c.log.Warn().Err(err).Str("url", imageURL).Msg("download failed")
			continue
		}
		c.log.Info().Str("file", filepath.Base(dest)).Msg("downloaded")
		saved++
	}
	return saved, nil
}

func (c *Client) downloadOne(ctx context.Context, imageURL, dest string) error {
	resp, err := c.get(ctx, imageURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("not an image: content-type %q", contentType)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return f.Close()
}

// downloadFilename derives a safe local filename from an image URL. URLs
// without a usable basename fall back to a sequential name.
func downloadFilename(imageURL string, index int) string {
	name := ""
	if parsed, err := url.Parse(imageURL); err == nil {
		name = path.Base(parsed.Path)
	}
	name = sanitizeFilename(name)
	if name == "" || name == "." || name == "/" || path.Ext(name) == "" {
		ext := path.Ext(name)
		if ext == "" {
			ext = ".jpg"
		}
		name = fmt.Sprintf("image_%03d%s", index, ext)
	}
	return name
}

// sanitizeFilename strips characters that are illegal on common filesystems
// and caps the length, preserving the extension. Names whose extension alone
// exceeds the cap are rejected as empty; callers fall back to a sequential
// name.
func sanitizeFilename(name string) string {
	name = illegalFilenameChars.ReplaceAllString(name, "_")
	if len(name) <= maxFilenameLen {
		return name
	}
	ext := path.Ext(name)
	stemLen := maxFilenameLen - len(ext) - 1
	if stemLen <= 0 {
		return ""
	}
	return name[:stemLen] + ext
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
