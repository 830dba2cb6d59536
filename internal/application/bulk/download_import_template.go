package bulk

import (
	"context"

	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/csvcodec"
)

const ImportTemplateFileName = "user_import_template.csv"

type DownloadImportTemplateOutput struct {
	FileName string
	Content  []byte
}

type DownloadImportTemplate interface {
	Execute(ctx context.Context) (DownloadImportTemplateOutput, error)
}

type downloadImportTemplate struct{}

func NewDownloadImportTemplate() DownloadImportTemplate {
	return &downloadImportTemplate{}
}

func (uc *downloadImportTemplate) Execute(ctx context.Context) (DownloadImportTemplateOutput, error) {
	return DownloadImportTemplateOutput{
		FileName: ImportTemplateFileName,
		Content:  csvcodec.Template(),
	}, nil
}
