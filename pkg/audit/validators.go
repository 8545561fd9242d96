package audit

type ListAuditLogsQuery struct {
	Limit       int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=500"`
	Offset      int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	PlanID      *string `query:"plan_id" json:"plan_id,omitempty"`
	OperationID *string `query:"operation_id" json:"operation_id,omitempty"`
	Result      *string `query:"result" json:"result,omitempty" validate:"omitempty,oneof=success failure"`
}
