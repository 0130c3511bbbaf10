// Package files serves authenticated file upload, download and deletion.
// Uploads land in the store under random names; the database keeps the
// original filename and metadata for downloads.
package files

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/borntodev-academy/go-auth-api/internal/auth"
	"github.com/borntodev-academy/go-auth-api/internal/config"
	"github.com/borntodev-academy/go-auth-api/internal/db/models"
	"github.com/borntodev-academy/go-auth-api/internal/storage"
	"github.com/borntodev-academy/go-auth-api/internal/web/handler"
)

// Path is the route group for file endpoints.
const Path = "/files"

// Service is the files handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	store *storage.Store
}

// Handler is the files handler.
var Handler = Service{}

// errFileMissing is returned when a file record exists but the file is gone
// from disk.
var errFileMissing = errors.New("stored file missing from disk")

// Init initializes the files handler. Every route requires authentication.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	store *storage.Store,
	issuer *auth.TokenIssuer,
) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	group := app.Group(Path, auth.RequireAuth(issuer))
	group.Post("/upload", s.PostUpload)
	group.Post("/upload-multiple", s.PostUploadMultiple)
	group.Post("/upload-avatar", s.PostUploadAvatar)
	group.Get("/download/:filename", s.GetDownload)
	group.Get("/view/:filename", s.GetView)
	group.Delete("/:filename", s.Delete)

	return nil
}

// PostUpload stores a single multipart file from the "file" field.
func (s *Service) PostUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
		})
	}

	record, err := s.saveOne(c, fileHeader)
	if err != nil {
		return s.uploadFailed(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fileResponse(record))
}

// PostUploadMultiple stores up to the configured number of files from the
// "files" field.
func (s *Service) PostUploadMultiple(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
		})
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No files uploaded",
		})
	}

	if len(fileHeaders) > s.cfg.Upload.MaxFiles {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Too many files",
			"max":     s.cfg.Upload.MaxFiles,
		})
	}

	responses := make([]fiber.Map, 0, len(fileHeaders))

	for _, fileHeader := range fileHeaders {
		record, err := s.saveOne(c, fileHeader)
		if err != nil {
			return s.uploadFailed(c, err)
		}

		responses = append(responses, fileResponse(record))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"files": responses,
	})
}

// PostUploadAvatar stores a single image file from the "file" field. Only
// image content types are accepted.
func (s *Service) PostUploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
		})
	}

	if !strings.HasPrefix(fileHeader.Header.Get(fiber.HeaderContentType), "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only image uploads are allowed",
		})
	}

	record, err := s.saveOne(c, fileHeader)
	if err != nil {
		return s.uploadFailed(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fileResponse(record))
}

// GetDownload sends a stored file as an attachment under its original name.
func (s *Service) GetDownload(c *fiber.Ctx) error {
	record, path, err := s.lookup(c.Params("filename"))
	if err != nil {
		return s.notFound(c)
	}

	return c.Download(path, record.OriginalName)
}

// GetView sends a stored file inline with its recorded content type.
func (s *Service) GetView(c *fiber.Ctx) error {
	record, path, err := s.lookup(c.Params("filename"))
	if err != nil {
		return s.notFound(c)
	}

	if record.MimeType != "" {
		c.Set(fiber.HeaderContentType, record.MimeType)
	}

	return c.SendFile(path)
}

// Delete removes a stored file and its metadata.
func (s *Service) Delete(c *fiber.Ctx) error {
	record, _, err := s.lookup(c.Params("filename"))
	if err != nil {
		return s.notFound(c)
	}

	if err := s.store.Delete(record.ID); err != nil {
		log.Error().Err(err).Str("file", record.ID).Msg("failed to delete stored file")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	if err := s.db.Delete(&models.UploadedFile{}, "id = ?", record.ID).Error; err != nil {
		log.Error().Err(err).Str("file", record.ID).Msg("failed to delete file record")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "File deleted",
	})
}

// saveOne writes the upload to the store and records its metadata. The stored
// file is removed again when the record cannot be written.
func (s *Service) saveOne(c *fiber.Ctx, fileHeader *multipart.FileHeader) (*models.UploadedFile, error) {
	claims := auth.ClaimsFromContext(c)

	uploaderID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	stored := s.store.NewName(fileHeader.Filename)

	path, err := s.store.Path(stored)
	if err != nil {
		return nil, err
	}

	if err := c.SaveFile(fileHeader, path); err != nil {
		return nil, err
	}

	record := &models.UploadedFile{
		ID:           stored,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get(fiber.HeaderContentType),
		Size:         fileHeader.Size,
		UploadedBy:   uploaderID,
	}

	if err := s.db.Create(record).Error; err != nil {
		if errDelete := s.store.Delete(stored); errDelete != nil {
			log.Warn().Err(errDelete).Str("file", stored).Msg("failed to clean up stored file")
		}

		return nil, err
	}

	return record, nil
}

// lookup resolves a stored filename to its record and on-disk path. Any
// failure (bad name, missing record, missing file) reads as not found.
func (s *Service) lookup(stored string) (*models.UploadedFile, string, error) {
	path, err := s.store.Path(stored)
	if err != nil {
		return nil, "", err
	}

	var record models.UploadedFile

	if err := s.db.First(&record, "id = ?", stored).Error; err != nil {
		return nil, "", err
	}

	if !s.store.Exists(stored) {
		return nil, "", errFileMissing
	}

	return &record, path, nil
}

func (s *Service) uploadFailed(c *fiber.Ctx, err error) error {
	log.Error().Err(err).Msg("file upload failed")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

func (s *Service) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": "File not found",
	})
}

func fileResponse(record *models.UploadedFile) fiber.Map {
	return fiber.Map{
		"id":            record.ID,
		"original_name": record.OriginalName,
		"mime_type":     record.MimeType,
		"size":          record.Size,
	}
}
