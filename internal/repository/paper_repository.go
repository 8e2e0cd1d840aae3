package repository

import (
	"paper_review_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PaperRepository struct {
	DB *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{DB: db}
}

func (r *PaperRepository) Create(paper *model.Paper) error {
	return r.DB.Create(paper).Error
}

func (r *PaperRepository) FindByID(id uint) (*model.Paper, error) {
	var paper model.Paper
	err := r.DB.First(&paper, id).Error
	return &paper, err
}

func (r *PaperRepository) Update(paper *model.Paper) error {
	return r.DB.Save(paper).Error
}

func (r *PaperRepository) UpdateTotalMarks(id uint, totalMarks float64) error {
	return r.DB.Model(&model.Paper{}).Where("id = ?", id).Update("total_marks", totalMarks).Error
}

// FindByCreatorWithPagination 分页查询某教师的试卷，支持按科目/编号搜索
func (r *PaperRepository) FindByCreatorWithPagination(creatorID uint, page, limit int, search string) ([]model.Paper, int, error) {
	var papers []model.Paper
	var total int64

	query := r.DB.Model(&model.Paper{}).Where("creator_id = ?", creatorID)
	if search != "" {
		query = query.Where("subject LIKE ? OR code LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&papers).Error
	return papers, int(total), err
}

// MarkImported 试卷定稿：置状态并记录导入时间
func (r *PaperRepository) MarkImported(tx *gorm.DB, id uint, at time.Time) error {
	return tx.Model(&model.Paper{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      model.PaperImported,
		"imported_at": at,
	}).Error
}

// Delete 删除试卷及其全部题目、答案、附件
func (r *PaperRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&model.PaperQuestion{}).Where("paper_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.CorrectAnswer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Attachment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("paper_id = ?", id).Delete(&model.PaperQuestion{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Paper{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
