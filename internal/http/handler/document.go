package handler

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"civicdocs/internal/http/middleware"
	"civicdocs/internal/service"
)

func actorFromCtx(c *fiber.Ctx) (int64, string) {
	uid, _ := c.Locals(middleware.UserIDLocalKey).(int64)
	role, _ := c.Locals(middleware.RoleLocalKey).(string)
	return uid, role
}

func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	return id, err == nil && id > 0
}

// UploadDocument accepts a multipart upload (field name: file) together with
// request_id, document_type_id, and an optional expiry_days form field. The
// upload is spooled to tmpDir and handed to the service; the spooled copy is
// removed on every path.
func UploadDocument(svc service.DocumentService, tmpDir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		requestID, err := strconv.ParseInt(c.FormValue("request_id"), 10, 64)
		if err != nil || requestID <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST_ID", "invalid request_id")
		}
		documentTypeID, err := strconv.ParseInt(c.FormValue("document_type_id"), 10, 64)
		if err != nil || documentTypeID <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT_TYPE_ID", "invalid document_type_id")
		}

		expiryDays := 0
		if v := c.FormValue("expiry_days"); v != "" {
			expiryDays, err = strconv.Atoi(v)
			if err != nil || expiryDays <= 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY_DAYS", "invalid expiry_days")
			}
		}

		// Spool with the original extension preserved so validation sees it.
		tmpPath := filepath.Join(tmpDir, uuid.NewString()+filepath.Ext(fh.Filename))
		if err := c.SaveFile(fh, tmpPath); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		defer os.Remove(tmpPath)

		ownerID, _ := actorFromCtx(c)

		res, err := svc.Upload(c.UserContext(), service.UploadInput{
			RequestID:      requestID,
			OwnerID:        ownerID,
			DocumentTypeID: documentTypeID,
			SourcePath:     tmpPath,
			FileName:       fh.Filename,
			ExpiryDays:     expiryDays,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(struct {
			Success bool `json:"success"`
			*service.UploadResult
		}{true, res})
	}
}

// ListRequestDocuments returns the active documents attached to a service
// request, newest first.
func ListRequestDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, ok := paramID(c, "requestID")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		items, err := svc.ListByRequest(c.UserContext(), requestID)
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"documents": items,
			"count":     len(items),
		})
	}
}

// DownloadDocument streams an active document's file back to the caller.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		path, fileName, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(fileName)
		return c.SendFile(path)
	}
}

// VerifyDocument marks an active document verified by the authenticated staff
// member.
func VerifyDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		verifierID, _ := actorFromCtx(c)
		if err := svc.Verify(c.UserContext(), id, verifierID); err != nil {
			return writeServiceError(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "document verified",
		})
	}
}

// DeleteDocument removes a document. Ownership is enforced by the service:
// only the uploader or an admin succeeds.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		actorID, actorRole := actorFromCtx(c)
		if err := svc.Delete(c.UserContext(), id, actorID, actorRole); err != nil {
			return writeServiceError(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "document deleted",
		})
	}
}
