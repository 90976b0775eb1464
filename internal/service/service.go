package service

import (
	"context"

	"github.com/CocotaJobs/dealexpress-sub000/internal/config"
	"github.com/CocotaJobs/dealexpress-sub000/internal/converter"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DocxConverter is the external rendering service collaborator.
type DocxConverter interface {
	ConvertDocxToPDF(ctx context.Context, docxBytes []byte, filename string) ([]byte, error)
}

// Services groups every application service.
type Services struct {
	Auth       *AuthService
	Proposal   *ProposalService
	Catalog    *CatalogService
	Template   *TemplateService
	Generation *GenerationService
	Report     *ReportService
	Whatsapp   *WhatsappService
}

// NewServices wires repositories, storage, the conversion client and redis
// into the service set.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	var storage ObjectStorage
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio unavailable, storage disabled", zap.Error(err))
		} else {
			storage = NewMinioStorage(minioClient, cfg.MinIO.Bucket)
		}
	}

	var conv DocxConverter
	if cfg.Converter.BaseURL != "" {
		conv = converter.NewClient(cfg.Converter.BaseURL, cfg.Converter.APIKey, logger)
	}

	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		Proposal:   NewProposalService(repos.Proposal, repos.Catalog),
		Catalog:    NewCatalogService(repos.Catalog),
		Template:   NewTemplateService(repos.Template, storage),
		Generation: NewGenerationService(repos, storage, conv, rdb, logger),
		Report:     NewReportService(repos.Proposal),
		Whatsapp:   NewWhatsappService(repos.Whatsapp),
	}
}
