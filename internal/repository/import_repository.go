package repository

import (
	"paper_review_backend/internal/model"

	"gorm.io/gorm"
)

type ImportRepository struct {
	DB *gorm.DB
}

func NewImportRepository(db *gorm.DB) *ImportRepository {
	return &ImportRepository{DB: db}
}

func (r *ImportRepository) Create(tx *gorm.DB, batch *model.ImportBatch) error {
	return tx.Create(batch).Error
}

func (r *ImportRepository) FindByID(id string) (*model.ImportBatch, error) {
	var batch model.ImportBatch
	err := r.DB.Where("id = ?", id).First(&batch).Error
	return &batch, err
}

func (r *ImportRepository) ListByPaper(paperID uint) ([]model.ImportBatch, error) {
	var batches []model.ImportBatch
	err := r.DB.Where("paper_id = ?", paperID).Order("created_at DESC").Find(&batches).Error
	return batches, err
}
