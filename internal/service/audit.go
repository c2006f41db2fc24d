package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"doctransfer/internal/model"
	"doctransfer/internal/repository"
)

// Audit actions.
const (
	ActionUploaded   = "uploaded"
	ActionDeleted    = "deleted"
	ActionDownloaded = "downloaded"
	ActionExpired    = "automatically deleted because expired"
)

// SystemActor is recorded for actions taken by the expiration sweep.
var SystemActor = model.Person{Email: "N/A", Name: "System", Surname: "Daemon"}

// AuditLog records and exposes the append-only trail of document actions.
type AuditLog interface {
	// Append writes one entry stamped with the current time.
	Append(ctx context.Context, actor model.Person, shareID, storageKey, displayName, action string) error
	// ListAll returns the whole trail. Only admins may read it.
	ListAll(ctx context.Context, user model.User) ([]model.AuditEntry, error)
	// Export writes the whole trail as an XLSX workbook. Only admins may export it.
	Export(ctx context.Context, user model.User, w io.Writer) error
}

type auditLog struct {
	repo      repository.AuditRepository
	adminRole string
	log       *zap.Logger
	now       func() time.Time
}

// NewAuditLog constructs an AuditLog. adminRole is the role marker granting read access.
func NewAuditLog(repo repository.AuditRepository, adminRole string, log *zap.Logger) AuditLog {
	return &auditLog{repo: repo, adminRole: adminRole, log: log.Named("audit"), now: utcNow}
}

func (a *auditLog) Append(ctx context.Context, actor model.Person, shareID, storageKey, displayName, action string) error {
	now := a.now()
	entry := model.AuditEntry{
		Actor:       actor,
		ShareID:     shareID,
		StorageKey:  storageKey,
		DisplayName: displayName,
		Action:      action,
		ActionTime:  unixSeconds(now),
		DisplayTime: now.Format(displayTimeLayout),
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.log.Error("audit append failed",
			zap.String("share_id", shareID),
			zap.String("action", action),
			zap.Error(err),
		)
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (a *auditLog) ListAll(ctx context.Context, user model.User) ([]model.AuditEntry, error) {
	if !user.HasRole(a.adminRole) {
		return nil, ErrForbidden
	}
	return a.repo.ListAll(ctx)
}

var auditColumns = []string{"Actor Email", "Actor Name", "Actor Surname", "Share ID", "Storage Key", "Display Name", "Action", "Action Time", "Display Time"}

func (a *auditLog) Export(ctx context.Context, user model.User, w io.Writer) error {
	entries, err := a.ListAll(ctx, user)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Audit"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	header := make([]any, len(auditColumns))
	for i, col := range auditColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(auditColumns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for rowIdx, e := range entries {
		row := []any{e.Actor.Email, e.Actor.Name, e.Actor.Surname, e.ShareID, e.StorageKey, e.DisplayName, e.Action, e.ActionTime, e.DisplayTime}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheetName, "A", lastCol, 20); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
