// Package worker regenerates the exported workbook whenever the ledger
// changes and optionally mirrors each mutation to Google Sheets.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"soyte/internal/amqp"
	"soyte/internal/core"
	"soyte/internal/excel"
	"soyte/internal/log"
	"soyte/internal/sheets"
	"soyte/internal/store"
)

type ExportWorker struct {
	store     store.Store
	projector excel.Projector
	exportDir string
	mirror    sheets.EntryAppender // optional
}

func NewExportWorker(s store.Store, projector excel.Projector, exportDir string, mirror sheets.EntryAppender) *ExportWorker {
	return &ExportWorker{
		store:     s,
		projector: projector,
		exportDir: exportDir,
		mirror:    mirror,
	}
}

// HandleEntryChanged rebuilds the workbook for the changed month from
// the database and mirrors the mutation. The message carries only
// coordinates, so handling is idempotent and safe to requeue.
func (w *ExportWorker) HandleEntryChanged(ctx context.Context, msg *amqp.EntryChangedMessage) error {
	month, err := core.ParseMonth(msg.Month)
	if err != nil {
		return fmt.Errorf("parse month %q: %w", msg.Month, err)
	}

	if err := w.RegenerateExport(ctx, msg.UserID, month); err != nil {
		return err
	}

	if err := w.mirrorChange(ctx, msg, month); err != nil {
		return err
	}

	return nil
}

// RegenerateExport writes the month's workbook under the export
// directory. The file is written to a temp path first and renamed, so
// a failed build never leaves a partial file behind.
func (w *ExportWorker) RegenerateExport(ctx context.Context, userID string, month core.Month) error {
	entries, err := w.store.ListEntries(ctx, userID, month)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	employees, err := w.store.ListEmployees(ctx, userID)
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}

	agg := excel.Aggregates{
		GrandTotal:  core.Aggregate(entries, ""),
		PerEmployee: core.EmployeeSummaries(entries, employees),
	}

	f, err := w.projector.Build(month, agg)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}

	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	final := filepath.Join(w.exportDir, excel.Filename(month))
	tmp := final + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish workbook: %w", err)
	}

	slog.InfoContext(ctx, "Export regenerated",
		log.FieldUserID, userID,
		log.FieldMonth, month.Key(),
		"entries", len(entries),
		log.FieldExportFile, final)
	return nil
}

func (w *ExportWorker) mirrorChange(ctx context.Context, msg *amqp.EntryChangedMessage, month core.Month) error {
	if w.mirror == nil {
		return nil
	}

	entry := core.Entry{ID: msg.EntryID}
	if msg.Op != amqp.OpDeleted {
		entries, err := w.store.ListEntries(ctx, msg.UserID, month)
		if err != nil {
			return fmt.Errorf("list entries for mirror: %w", err)
		}
		for _, e := range entries {
			if e.ID == msg.EntryID {
				entry = e
				break
			}
		}
	}

	ref, err := w.mirror.AppendEntry(ctx, msg.UserID, month, entry, string(msg.Op))
	if err != nil {
		return fmt.Errorf("mirror entry %s: %w", msg.EntryID, err)
	}

	slog.InfoContext(ctx, "Entry change mirrored",
		log.FieldEntryID, msg.EntryID,
		log.FieldOperation, msg.Op,
		log.FieldSheetsRef, ref)
	return nil
}
