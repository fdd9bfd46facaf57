package web

import (
	"archive/zip"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/imagetools/webp-batch/internal/convert"
	"github.com/imagetools/webp-batch/internal/imaging"
)

type loginPage struct {
	Error string
}

type indexPage struct {
	Error   string
	Quality int
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.authenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, "login", loginPage{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")
	if !checkPassword(password, s.passwordHash) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("failed login attempt")
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "login", loginPage{Error: "Wrong password."})
		return
	}

	id := s.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.revoke(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index", indexPage{Quality: s.defaults.Quality})
}

// handleConvert accepts a multipart upload, runs the conversion pipeline
// over the submitted files and streams back a zip bundle of the results.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.renderIndexError(w, http.StatusRequestEntityTooLarge, "Upload too large or malformed.")
		return
	}

	opts, err := s.formOptions(r)
	if err != nil {
		s.renderIndexError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	conv, err := convert.New(opts, s.log)
	if err != nil {
		s.renderIndexError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		s.renderIndexError(w, http.StatusUnprocessableEntity, "No files submitted.")
		return
	}

	workDir, err := os.MkdirTemp("", "webp-batch-upload-*")
	if err != nil {
		s.serverError(w, err)
		return
	}
	defer os.RemoveAll(workDir)

	inputDir := filepath.Join(workDir, "in")
	outputDir := filepath.Join(workDir, "out")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		s.serverError(w, err)
		return
	}

	saved := 0
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if name == "" || !imaging.IsSupported(name) {
			s.log.Warn().Str("file", fh.Filename).Msg("skipping unsupported upload")
			continue
		}
		if err := saveUpload(fh, filepath.Join(inputDir, name)); err != nil {
			s.serverError(w, err)
			return
		}
		saved++
	}
	if saved == 0 {
		s.renderIndexError(w, http.StatusUnprocessableEntity, "No supported image files submitted.")
		return
	}

	converted, total := conv.ConvertDir(inputDir, outputDir)
	s.log.Info().Int("converted", converted).Int("total", total).Msg("upload batch finished")
	if converted == 0 {
		s.renderIndexError(w, http.StatusUnprocessableEntity, "None of the uploaded files could be converted.")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="converted_webp.zip"`)
	if err := zipDir(w, outputDir); err != nil {
		s.log.Error().Err(err).Msg("failed to write zip bundle")
	}
}

// formOptions builds run options from the form, falling back to the server
// defaults for blank fields.
func (s *Server) formOptions(r *http.Request) (convert.Options, error) {
	opts := s.defaults

	if v := r.FormValue("quality"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid quality %q", v)
		}
		opts.Quality = q
	}
	if v := r.FormValue("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid scale factor %q", v)
		}
		opts.ScaleFactor = f
	}
	opts.CropBorders = r.FormValue("crop") != ""
	if r.FormValue("white_bg") != "" {
		opts.PreserveTransparency = false
	}
	return opts, nil
}

func saveUpload(fh *multipart.FileHeader, dest string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return out.Close()
}

// zipDir writes every regular file directly inside dir into a zip stream.
func zipDir(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		dst, err := zw.Create(entry.Name())
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := io.Copy(dst, f); err != nil {
			_ = f.Close()
			return err
		}
		_ = f.Close()
	}
	return zw.Close()
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("failed to render template")
	}
}

func (s *Server) renderIndexError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	s.render(w, "index", indexPage{Error: msg, Quality: s.defaults.Quality})
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("internal server error")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
