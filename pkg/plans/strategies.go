package plans

import (
	"syscall"

	"github.com/pkg/errors"

	"github.com/shelforg/shelforg/pkg/fileutils"
	"github.com/shelforg/shelforg/pkg/models"
)

// strategy performs one kind of file operation. sourceHash is the verified
// hash of the source at execution time.
type strategy func(op *models.PlannedOperation, sourceHash string) error

var strategies = map[string]strategy{
	models.OperationTypeRename:     renameStrategy,
	models.OperationTypeMove:       renameStrategy,
	models.OperationTypeCopyDelete: copyDeleteStrategy,
}

// renameStrategy covers both same-directory renames and same-volume moves;
// os.Rename is atomic for either. Volume detection can guess wrong when the
// target tree does not exist yet, so a cross-device rename degrades to a
// verified copy and delete.
func renameStrategy(op *models.PlannedOperation, sourceHash string) error {
	if err := fileutils.SafeRename(op.SourcePath, op.TargetPath); err != nil {
		if !isCrossDevice(err) {
			return err
		}
		return errors.WithStack(fileutils.SafeCopyDelete(op.SourcePath, op.TargetPath, sourceHash))
	}
	return nil
}

func copyDeleteStrategy(op *models.PlannedOperation, sourceHash string) error {
	return errors.WithStack(fileutils.SafeCopyDelete(op.SourcePath, op.TargetPath, sourceHash))
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
