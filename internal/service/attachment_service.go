package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"paper_review_backend/internal/config"
	"paper_review_backend/internal/model"
	"paper_review_backend/internal/repository"
	"paper_review_backend/internal/util"
	"paper_review_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadPolicy 上传校验策略，来自配置
type UploadPolicy struct {
	MaxFiles     int
	MaxSizeBytes int64
	MaxSizeMB    int64
	AllowedTypes []string
}

// IncomingFile 待校验的上传文件
type IncomingFile struct {
	Name string
	Size int64
	Mime string
}

type AttachmentService struct {
	QuestionRepo   *repository.QuestionRepository
	AttachmentRepo *repository.AttachmentRepository
	PaperRepo      *repository.PaperRepository
	Storage        *StorageService
	ReviewService  *ReviewService
	Policy         UploadPolicy
}

func NewAttachmentService(
	questionRepo *repository.QuestionRepository,
	attachmentRepo *repository.AttachmentRepository,
	paperRepo *repository.PaperRepository,
	storage *StorageService,
	reviewService *ReviewService,
	cfg *config.UploadConfig,
) *AttachmentService {
	allowed := cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = util.AllowedAttachmentMimeTypes
	}
	return &AttachmentService{
		QuestionRepo:   questionRepo,
		AttachmentRepo: attachmentRepo,
		PaperRepo:      paperRepo,
		Storage:        storage,
		ReviewService:  reviewService,
		Policy: UploadPolicy{
			MaxFiles:     cfg.MaxFilesPerNode,
			MaxSizeBytes: cfg.MaxFileSizeMB * 1024 * 1024,
			MaxSizeMB:    cfg.MaxFileSizeMB,
			AllowedTypes: allowed,
		},
	}
}

// UploadValidationError 上传校验失败，信息可直接回显给用户
type UploadValidationError struct {
	Message string
}

func (e *UploadValidationError) Error() string {
	return e.Message
}

// ValidateUpload 上传前校验，规则按序生效：数量、单文件大小、媒体类型。
// 返回第一条失败信息，任何一条失败都不会触达存储层。
func ValidateUpload(policy UploadPolicy, currentCount int, files []IncomingFile) error {
	if currentCount+len(files) > policy.MaxFiles {
		return &UploadValidationError{Message: fmt.Sprintf("Maximum %d files allowed. Current: %d, Adding: %d",
			policy.MaxFiles, currentCount, len(files))}
	}
	for _, f := range files {
		if f.Size > policy.MaxSizeBytes {
			return &UploadValidationError{Message: fmt.Sprintf("File %s exceeds the maximum size of %dMB", f.Name, policy.MaxSizeMB)}
		}
	}
	for _, f := range files {
		if !util.MimeAllowed(f.Mime, policy.AllowedTypes) {
			return &UploadValidationError{Message: fmt.Sprintf("File type %s is not allowed", f.Mime)}
		}
	}
	return nil
}

// Upload 为题目节点上传附件，校验通过后逐个落盘并登记
func (s *AttachmentService) Upload(ctx context.Context, questionID uint, headers []*multipart.FileHeader) ([]model.Attachment, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	paper, err := s.PaperRepo.FindByID(question.PaperID)
	if err != nil {
		return nil, err
	}
	if paper.Status == model.PaperImported {
		return nil, util.ErrPaperImported
	}

	current, err := s.AttachmentRepo.CountByQuestion(questionID)
	if err != nil {
		return nil, err
	}

	incoming := make([]IncomingFile, 0, len(headers))
	for _, h := range headers {
		mime, err := detectMime(h)
		if err != nil {
			return nil, err
		}
		incoming = append(incoming, IncomingFile{Name: h.Filename, Size: h.Size, Mime: mime})
	}

	if err := ValidateUpload(s.Policy, int(current), incoming); err != nil {
		return nil, err
	}

	saved := make([]model.Attachment, 0, len(headers))
	for i, h := range headers {
		src, err := h.Open()
		if err != nil {
			return saved, err
		}

		objectName := fmt.Sprintf("attachments/%d/%d/%s%s",
			question.PaperID, questionID, uuid.New().String(), filepath.Ext(h.Filename))
		url, err := s.Storage.Upload(ctx, objectName, src, h.Size, incoming[i].Mime)
		src.Close()
		if err != nil {
			return saved, err
		}

		attachment := model.Attachment{
			QuestionID: questionID,
			FileName:   h.Filename,
			MimeType:   incoming[i].Mime,
			URL:        url,
			StorageKey: objectName,
			ByteSize:   h.Size,
		}
		if err := s.AttachmentRepo.Create(&attachment); err != nil {
			return saved, err
		}
		saved = append(saved, attachment)
	}

	s.ReviewService.InvalidateSummary(ctx, question.PaperID)
	return saved, nil
}

// Delete 删除附件记录，物理文件随后清理，失败不回滚记录删除
func (s *AttachmentService) Delete(ctx context.Context, attachmentID uint) error {
	attachment, err := s.AttachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAttachmentNotFound
		}
		return err
	}

	question, err := s.QuestionRepo.FindByID(attachment.QuestionID)
	if err != nil {
		return err
	}

	if err := s.AttachmentRepo.Delete(attachmentID); err != nil {
		return err
	}

	if attachment.StorageKey != "" {
		deleteCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Storage.Delete(deleteCtx, attachment.StorageKey); err != nil {
			logger.Log.Warn("Failed to delete attachment object from storage",
				zap.String("storage_key", attachment.StorageKey),
				zap.Uint("attachment_id", attachmentID),
				zap.Error(err))
		}
	}

	s.ReviewService.InvalidateSummary(ctx, question.PaperID)
	return nil
}

func detectMime(h *multipart.FileHeader) (string, error) {
	f, err := h.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return util.DetectMimeType(f)
}
