package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/shelforg/shelforg/pkg/models"
	"github.com/shelforg/shelforg/pkg/scanner"
	"github.com/shelforg/shelforg/pkg/scans"
)

// ProcessScanJob walks the scan's root path, streams progress into the
// registry so the API can report on a running scan, and persists the
// discovered files and groups when the walk finishes.
func (w *Worker) ProcessScanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)
	log.Info("processing scan job")

	data, ok := job.DataParsed.(*models.JobScanData)
	if !ok {
		return errors.New("unexpected data payload for scan job")
	}

	scan, err := w.scanService.RetrieveScan(ctx, scans.RetrieveScanOptions{ID: &data.ScanID})
	if err != nil {
		return errors.WithStack(err)
	}

	stored, err := w.settingsService.Retrieve(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	finalStatus := models.ScanStatusCompleted
	result := w.scanner.Scan(ctx, data.RootPath, scan.ID, stored.ExcludedPaths, func(p scanner.Progress) {
		w.registry.Set(p)
		if p.Status == models.ScanStatusFailed {
			finalStatus = models.ScanStatusFailed
		}
	})

	if err := w.scanService.SaveResult(ctx, scan, result, finalStatus); err != nil {
		return errors.WithStack(err)
	}
	w.registry.Delete(scan.ID)

	log.Info("scan job complete", logger.Data{
		"scan_id": scan.ID,
		"status":  finalStatus,
		"files":   len(result.Files),
		"groups":  len(result.Groups),
		"errors":  len(result.Errors),
	})
	return nil
}
