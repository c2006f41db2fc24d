package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"doctransfer/internal/http/middleware"
	"doctransfer/internal/identity"
	"doctransfer/internal/model"
	"doctransfer/internal/service"
)

type documentActionRequest struct {
	Action  string `json:"action"`
	NewName string `json:"new_name"`
}

type shareRequest struct {
	Users []string `json:"users"`
}

type uploadRequest struct {
	Filename string `json:"filename"`
}

type userView struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Key     string `json:"key"`
}

var (
	okMessage       = fiber.Map{"message": "Ok"}
	forbiddenStatus = fiber.Map{"status": "Forbidden"}
)

func currentUser(c *fiber.Ctx) (model.User, error) {
	u, ok := middleware.UserFromCtx(c)
	if !ok {
		return model.User{}, fiber.ErrUnauthorized
	}
	return u, nil
}

// ListDocuments handles GET /docs: owned documents followed by documents shared with the caller.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		views, err := svc.ListFor(c.UserContext(), user)
		if err != nil {
			return internalError(c)
		}
		return c.JSON(views)
	}
}

// UpdateDocument handles POST /docs/:shareId with action "delete" or "rename".
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		var req documentActionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		shareID := c.Params("shareId")

		switch strings.ToLower(req.Action) {
		case "delete":
			deleted, err := svc.Delete(c.UserContext(), user, shareID)
			if err != nil {
				return internalError(c)
			}
			if !deleted {
				return c.Status(fiber.StatusForbidden).JSON(forbiddenStatus)
			}
			return c.JSON(okMessage)
		case "rename":
			err := svc.Rename(c.UserContext(), user, shareID, req.NewName)
			switch {
			case err == nil:
				return c.JSON(okMessage)
			case errors.Is(err, service.ErrNameRequired):
				return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "new_name is required")
			case errors.Is(err, service.ErrNotFound):
				return c.Status(fiber.StatusForbidden).JSON(forbiddenStatus)
			default:
				return internalError(c)
			}
		default:
			return writeError(c, fiber.StatusBadRequest, "INVALID_ACTION", "action must be delete or rename")
		}
	}
}

// ShareDocument handles POST /share/:shareId with the full recipient key list.
func ShareDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		var req shareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		recipients, err := model.ParseRecipients(req.Users)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_RECIPIENT", "users must be email#name#surname keys")
		}

		res, err := svc.Share(c.UserContext(), user, c.Params("shareId"), recipients)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Error"})
			}
			return internalError(c)
		}

		body := fiber.Map{"message": "Ok"}
		if len(res.Blocked) > 0 {
			body["forbidden"] = res.Blocked
		}
		return c.JSON(body)
	}
}

// DownloadLink handles GET /share/:shareId.
func DownloadLink(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		link, err := svc.DownloadLink(c.UserContext(), user, c.Params("shareId"))
		if err != nil {
			if errors.Is(err, service.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
			}
			return internalError(c)
		}
		return c.JSON(fiber.Map{"download_link": link})
	}
}

// ListShareUsers handles GET /share/users: known identities for the share picker.
func ListShareUsers(directory identity.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := directory.ListUsers(c.UserContext())
		if err != nil {
			return internalError(c)
		}
		out := make([]userView, 0, len(users))
		for _, u := range users {
			out = append(out, userView{Email: u.Email, Name: u.Name, Surname: u.Surname, Key: u.IdentityKey()})
		}
		return c.JSON(out)
	}
}

// CreateUploadLink handles POST /uploads.
func CreateUploadLink(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c)
		if err != nil {
			return err
		}
		var req uploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		link, err := svc.UploadLink(c.UserContext(), user, req.Filename)
		switch {
		case err == nil:
			return c.Status(fiber.StatusCreated).JSON(link)
		case errors.Is(err, service.ErrNameRequired):
			return writeError(c, fiber.StatusBadRequest, "FILENAME_REQUIRED", "filename is required")
		case errors.Is(err, service.ErrIdentityNotFound):
			return writeError(c, fiber.StatusForbidden, "SUBJECT_REQUIRED", "token carries no subject")
		default:
			return internalError(c)
		}
	}
}
