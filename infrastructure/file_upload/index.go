package fileupload

import (
	"os"

	"mruput.io/infrastructure/file_upload/azure"
	"mruput.io/infrastructure/file_upload/types"
)

// FileUploader stays nil when no storage account is configured; stills are
// then not kept.
var FileUploader types.FileUploaderType

func InitialiseFileUploader() {
	account := os.Getenv("AZURE_STORAGE_ACCOUNT_NAME")
	if account == "" {
		return
	}
	FileUploader = &azure.AzureBlobSignedURLService{
		AccountName:   account,
		AccountKey:    os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),
		ContainerName: os.Getenv("AZURE_CONTAINER_NAME"),
	}
}
