package settings

type UpdateSettingsPayload struct {
	LibraryRoot             *string   `json:"library_root,omitempty" validate:"omitempty,abspath"`
	OutputRoot              *string   `json:"output_root,omitempty" validate:"omitempty,abspath"`
	AudiobookFolderTemplate *string   `json:"audiobook_folder_template,omitempty" validate:"omitempty,pathtemplate"`
	AudiobookFileTemplate   *string   `json:"audiobook_file_template,omitempty" validate:"omitempty,pathtemplate"`
	ExcludedPaths           *[]string `json:"excluded_paths,omitempty" validate:"omitempty,max=100,dive,required"`
}
