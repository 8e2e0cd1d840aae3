package repository

import (
	"paper_review_backend/internal/model"

	"gorm.io/gorm"
)

type AttachmentRepository struct {
	DB *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{DB: db}
}

func (r *AttachmentRepository) Create(attachment *model.Attachment) error {
	return r.DB.Create(attachment).Error
}

func (r *AttachmentRepository) FindByID(id uint) (*model.Attachment, error) {
	var attachment model.Attachment
	err := r.DB.First(&attachment, id).Error
	return &attachment, err
}

func (r *AttachmentRepository) CountByQuestion(questionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attachment{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}

func (r *AttachmentRepository) ListByQuestion(questionID uint) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.DB.Where("question_id = ?", questionID).Order("id ASC").Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) Delete(id uint) error {
	result := r.DB.Delete(&model.Attachment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
