package mediafiles

type ListMediaFilesQuery struct {
	Limit     int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=500"`
	Offset    int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	ScanID    *string `query:"scan_id" json:"scan_id,omitempty"`
	GroupID   *string `query:"group_id" json:"group_id,omitempty"`
	MediaType *string `query:"media_type" json:"media_type,omitempty" validate:"omitempty,oneof=audiobook ebook comic"`
	Status    *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=pending reviewed approved applied"`
}

type UpdateMediaFilePayload struct {
	FinalTitle       *string  `json:"final_title,omitempty" validate:"omitempty,max=500"`
	FinalAuthor      *string  `json:"final_author,omitempty" validate:"omitempty,max=500"`
	FinalNarrator    *string  `json:"final_narrator,omitempty" validate:"omitempty,max=500"`
	FinalSeries      *string  `json:"final_series,omitempty" validate:"omitempty,max=500"`
	FinalSeriesIndex *float64 `json:"final_series_index,omitempty" validate:"omitempty,min=0"`
	FinalYear        *int     `json:"final_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Status           *string  `json:"status,omitempty" validate:"omitempty,oneof=reviewed approved"`
}

type ListGroupsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	ScanID *string `query:"scan_id" json:"scan_id,omitempty"`
	Status *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=pending reviewed approved applied"`
}

type UpdateGroupPayload struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=500"`
	Author      *string  `json:"author,omitempty" validate:"omitempty,max=500"`
	Narrator    *string  `json:"narrator,omitempty" validate:"omitempty,max=500"`
	Series      *string  `json:"series,omitempty" validate:"omitempty,max=500"`
	SeriesIndex *float64 `json:"series_index,omitempty" validate:"omitempty,min=0"`
	Year        *int     `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=reviewed approved"`
}
