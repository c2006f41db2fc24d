package handler

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"doctransfer/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListAudit handles GET /audit for admins.
func ListAudit(audit service.AuditLog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		entries, err := audit.ListAll(c.UserContext(), user)
		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(forbiddenStatus)
			}
			return internalError(c)
		}
		return c.JSON(entries)
	}
}

// ExportAudit handles GET /audit/export and returns the trail as a workbook.
func ExportAudit(audit service.AuditLog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := audit.Export(c.UserContext(), user, &buf); err != nil {
			if errors.Is(err, service.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(forbiddenStatus)
			}
			return internalError(c)
		}

		c.Attachment(fmt.Sprintf("audit-%s.xlsx", time.Now().UTC().Format("20060102-150405")))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	}
}
