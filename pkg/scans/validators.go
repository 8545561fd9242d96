package scans

type CreateScanPayload struct {
	RootPath *string `json:"root_path,omitempty" validate:"omitempty,abspath"`
}

type ListScansQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Status *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=pending discovering grouping processing completed failed"`
}
