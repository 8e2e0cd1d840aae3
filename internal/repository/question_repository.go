package repository

import (
	"paper_review_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.PaperQuestion) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.PaperQuestion, error) {
	var question model.PaperQuestion
	err := r.DB.Preload("Answers").Preload("Attachments").First(&question, id).Error
	return &question, err
}

// ListByPaper 按出题顺序取全卷平面记录，层级由调用方组装
func (r *QuestionRepository) ListByPaper(paperID uint) ([]model.PaperQuestion, error) {
	var questions []model.PaperQuestion
	err := r.DB.Preload("Answers").Preload("Attachments").
		Where("paper_id = ?", paperID).
		Order("parent_id ASC, ordinal ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CountByPaper(paperID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PaperQuestion{}).Where("paper_id = ?", paperID).Count(&count).Error
	return count, err
}

func (r *QuestionRepository) Update(question *model.PaperQuestion) error {
	return r.DB.Save(question).Error
}

// UpdateFields 局部更新，自动修复用
func (r *QuestionRepository) UpdateFields(tx *gorm.DB, id uint, fields map[string]interface{}) error {
	return tx.Model(&model.PaperQuestion{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceAnswers 整体替换某题的参考答案
func (r *QuestionRepository) ReplaceAnswers(questionID uint, answers []model.CorrectAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.CorrectAnswer{}).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].ID = 0
			answers[i].QuestionID = questionID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete 删除题目及其子节点、答案与附件
func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		ids := []uint{id}
		frontier := []uint{id}
		// 最多三层，循环两次即可收齐
		for len(frontier) > 0 {
			var next []uint
			if err := tx.Model(&model.PaperQuestion{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
				return err
			}
			ids = append(ids, next...)
			frontier = next
		}

		if err := tx.Where("question_id IN ?", ids).Delete(&model.CorrectAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN ?", ids).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", ids).Delete(&model.PaperQuestion{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
