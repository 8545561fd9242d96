package plans

type CreatePlanPayload struct {
	ScanID   string   `json:"scan_id"   validate:"required,uuid4"`
	FileIDs  []string `json:"file_ids,omitempty"  validate:"omitempty,max=1000,dive,uuid4"`
	GroupIDs []string `json:"group_ids,omitempty" validate:"omitempty,max=1000,dive,uuid4"`
}

type ListPlansQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	ScanID *string `query:"scan_id" json:"scan_id,omitempty" validate:"omitempty,uuid4"`
	Status *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=draft ready applying completed failed rolled_back"`
}
