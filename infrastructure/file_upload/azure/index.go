package azure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	_azblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	azblob_sas "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	azblob "github.com/Azure/azure-storage-blob-go/azblob"

	"mruput.io/infrastructure/file_upload/types"
	"mruput.io/infrastructure/logger"
)

// AzureBlobSignedURLService stores attendance stills in one container and
// hands out short lived signed links to them.
type AzureBlobSignedURLService struct {
	AccountName   string
	ContainerName string
	AccountKey    string
}

const signedURLTTL = 5 * time.Minute

func (azurlservice *AzureBlobSignedURLService) serviceURL() string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/", azurlservice.AccountName)
}

func (azurlservice *AzureBlobSignedURLService) blobURL(fileName string) (azblob.BlockBlobURL, error) {
	credential, err := azblob.NewSharedKeyCredential(azurlservice.AccountName, azurlservice.AccountKey)
	if err != nil {
		logger.Error("error generated azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return azblob.BlockBlobURL{}, err
	}
	URL, err := url.Parse(fmt.Sprintf("%s%s/%s", azurlservice.serviceURL(), azurlservice.ContainerName, fileName))
	if err != nil {
		logger.Error("error parsing blob url", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return azblob.BlockBlobURL{}, err
	}
	return azblob.NewBlockBlobURL(*URL, azblob.NewPipeline(credential, azblob.PipelineOptions{})), nil
}

func (azurlservice *AzureBlobSignedURLService) UploadFile(ctx context.Context, fileName string, data []byte, contentType string) error {
	credential, err := _azblob.NewSharedKeyCredential(azurlservice.AccountName, azurlservice.AccountKey)
	if err != nil {
		return err
	}
	client, err := _azblob.NewClientWithSharedKeyCredential(azurlservice.serviceURL(), credential, nil)
	if err != nil {
		return err
	}
	_, err = client.UploadBuffer(ctx, azurlservice.ContainerName, fileName, data, &_azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		logger.Error("error uploading blob", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "fileName",
			Data: fileName,
		})
		return err
	}
	return nil
}

func (azurlservice *AzureBlobSignedURLService) GenerateDownloadURL(fileName string) (*string, error) {
	return azurlservice.GeneratedSignedURL(fileName, types.SignedURLPermission{Read: true})
}

func (azurlservice *AzureBlobSignedURLService) GeneratedSignedURL(fileName string, permission types.SignedURLPermission) (*string, error) {
	if permission.Read == permission.Write {
		return nil, errors.New("permission must be either read or write")
	}
	_credential, err := _azblob.NewSharedKeyCredential(azurlservice.AccountName, azurlservice.AccountKey)
	if err != nil {
		logger.Error("error generated _azblob shared key credential", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	blobURL, err := azurlservice.blobURL(fileName)
	if err != nil {
		return nil, err
	}

	sasQueryParams, err := azblob_sas.BlobSignatureValues{
		Protocol:      azblob_sas.ProtocolHTTPS,
		StartTime:     time.Now().UTC(),
		ExpiryTime:    time.Now().UTC().Add(signedURLTTL),
		Permissions:   (&azblob_sas.BlobPermissions{Read: permission.Read, Write: permission.Write}).String(),
		ContainerName: azurlservice.ContainerName,
		BlobName:      fileName,
	}.SignWithSharedKey(_credential)
	if err != nil {
		logger.Error("error blob signature values", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	sasURL := fmt.Sprintf("%s?%s", blobURL.String(), sasQueryParams.Encode())
	return &sasURL, nil
}

func (azurlservice *AzureBlobSignedURLService) CheckFileExists(fileName string) (bool, error) {
	blobURL, err := azurlservice.blobURL(fileName)
	if err != nil {
		return false, err
	}
	_, err = blobURL.GetProperties(context.Background(), azblob.BlobAccessConditions{}, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		var serr azblob.StorageError
		if errors.As(err, &serr) && serr.ServiceCode() == azblob.ServiceCodeBlobNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
