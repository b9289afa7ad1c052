package types

import "context"

type FileUploaderType interface {
	UploadFile(ctx context.Context, fileName string, data []byte, contentType string) error
	GenerateDownloadURL(fileName string) (*string, error)
	CheckFileExists(fileName string) (bool, error)
}

// SignedURLPermission is what a signed still URL allows. Exactly one of Read
// and Write is set.
type SignedURLPermission struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}
