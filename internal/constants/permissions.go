package constants

const (
	ViewProperties   = "view_properties"
	EditProperties   = "edit_properties"
	DeleteProperties = "delete_properties"
	ImportProperties = "import_properties"
	UploadImages     = "upload_images"
)
