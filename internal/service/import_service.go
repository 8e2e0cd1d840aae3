package service

import (
	"context"
	"encoding/json"
	"errors"
	"paper_review_backend/internal/model"
	"paper_review_backend/internal/repository"
	"paper_review_backend/internal/util"
	"paper_review_backend/pkg/monitoring"
	"strconv"
	"time"

	"gorm.io/gorm"
)

type ImportService struct {
	DB            *gorm.DB
	PaperRepo     *repository.PaperRepository
	QuestionRepo  *repository.QuestionRepository
	ImportRepo    *repository.ImportRepository
	ReviewService *ReviewService
}

func NewImportService(
	db *gorm.DB,
	paperRepo *repository.PaperRepository,
	questionRepo *repository.QuestionRepository,
	importRepo *repository.ImportRepository,
	reviewService *ReviewService,
) *ImportService {
	return &ImportService{
		DB:            db,
		PaperRepo:     paperRepo,
		QuestionRepo:  questionRepo,
		ImportRepo:    importRepo,
		ReviewService: reviewService,
	}
}

type ImportInput struct {
	ApplyFixes bool `json:"applyFixes"`
}

type ImportResult struct {
	Batch      *model.ImportBatch `json:"batch"`
	FixedCount int                `json:"fixedCount"`
	Overall    string             `json:"overall"`
}

// Import 导入定稿。流程：取最新审核视图，可选先执行自动修复再复查，
// 清单未过关直接拒绝，过关后在事务里落审计批次并置试卷状态。
func (s *ImportService) Import(ctx context.Context, paperID, userID uint, input ImportInput) (*ImportResult, error) {
	paper, err := s.PaperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}
	if paper.Status == model.PaperImported {
		return nil, util.ErrPaperImported
	}

	fixedCount := 0
	if input.ApplyFixes {
		report, err := s.applyFixes(paperID)
		if err != nil {
			return nil, err
		}
		fixedCount = report.Changed
		s.ReviewService.InvalidateSummary(ctx, paperID)
	}

	// 修复后重新聚合，导入门槛看的是当下状态
	summary, err := s.ReviewService.GetSummary(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if !summary.CanImport {
		monitoring.ImportCounter.WithLabelValues("blocked").Inc()
		return nil, util.ErrImportBlocked
	}

	statsJSON, err := json.Marshal(summary.Statistics)
	if err != nil {
		return nil, err
	}
	checklistJSON, err := json.Marshal(summary.Checklist)
	if err != nil {
		return nil, err
	}

	batch := &model.ImportBatch{
		PaperID:    paperID,
		ImportedBy: userID,
		Statistics: statsJSON,
		Checklist:  checklistJSON,
		FixedCount: fixedCount,
		Status:     "completed",
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ImportRepo.Create(tx, batch); err != nil {
			return err
		}
		if err := s.PaperRepo.MarkImported(tx, paperID, time.Now()); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		monitoring.ImportCounter.WithLabelValues("failed").Inc()
		return nil, err
	}

	monitoring.ImportCounter.WithLabelValues("success").Inc()
	s.ReviewService.InvalidateSummary(ctx, paperID)

	return &ImportResult{
		Batch:      batch,
		FixedCount: fixedCount,
		Overall:    summary.Overall,
	}, nil
}

// ApplyFixes 显式触发自动修复，不导入。返回修复明细。
func (s *ImportService) ApplyFixes(ctx context.Context, paperID uint) (*FixReport, error) {
	paper, err := s.PaperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}
	if paper.Status == model.PaperImported {
		return nil, util.ErrPaperImported
	}

	report, err := s.applyFixes(paperID)
	if err != nil {
		return nil, err
	}
	s.ReviewService.InvalidateSummary(ctx, paperID)
	return report, nil
}

func (s *ImportService) applyFixes(paperID uint) (*FixReport, error) {
	flat, err := s.QuestionRepo.ListByPaper(paperID)
	if err != nil {
		return nil, err
	}

	questions, _ := AssembleHierarchy(flat)
	fixed, report := BuildFixList(questions)

	if report.Changed == 0 {
		return &report, nil
	}

	changed := make(map[string]bool, len(report.ChangedKeys))
	for _, k := range report.ChangedKeys {
		changed[k] = true
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.persistFixed(tx, fixed, "", changed)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// persistFixed 只回写被修复的节点，键的推导方式与修复阶段一致
func (s *ImportService) persistFixed(tx *gorm.DB, questions []model.PaperQuestion, parentKey string, changed map[string]bool) error {
	for _, q := range questions {
		key := strconv.FormatUint(uint64(q.ID), 10)
		if parentKey != "" {
			key = parentKey + "-" + key
		}
		if changed[key] {
			fields := map[string]interface{}{
				"body":  q.Body,
				"marks": q.Marks,
			}
			if err := s.QuestionRepo.UpdateFields(tx, q.ID, fields); err != nil {
				return err
			}
		}
		if err := s.persistFixed(tx, q.Children, key, changed); err != nil {
			return err
		}
	}
	return nil
}

func (s *ImportService) History(ctx context.Context, paperID uint) ([]model.ImportBatch, error) {
	return s.ImportRepo.ListByPaper(paperID)
}
