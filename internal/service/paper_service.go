package service

import (
	"context"
	"errors"
	"paper_review_backend/internal/model"
	"paper_review_backend/internal/repository"
	"paper_review_backend/internal/util"

	"gorm.io/gorm"
)

type PaperService struct {
	PaperRepo     *repository.PaperRepository
	QuestionRepo  *repository.QuestionRepository
	ReviewService *ReviewService
}

func NewPaperService(paperRepo *repository.PaperRepository, questionRepo *repository.QuestionRepository, reviewService *ReviewService) *PaperService {
	return &PaperService{
		PaperRepo:     paperRepo,
		QuestionRepo:  questionRepo,
		ReviewService: reviewService,
	}
}

type CreatePaperInput struct {
	Code        string  `json:"code" binding:"required"`
	Subject     string  `json:"subject" binding:"required"`
	ExamYear    string  `json:"examYear" binding:"required"`
	ExamSession string  `json:"examSession"`
	ExamBoard   string  `json:"examBoard"`
	TotalMarks  float64 `json:"totalMarks"`
}

type UpdatePaperInput struct {
	Code        *string  `json:"code"`
	Subject     *string  `json:"subject"`
	ExamYear    *string  `json:"examYear"`
	ExamSession *string  `json:"examSession"`
	ExamBoard   *string  `json:"examBoard"`
	TotalMarks  *float64 `json:"totalMarks"`
}

func (s *PaperService) Create(ctx context.Context, creatorID uint, input CreatePaperInput) (*model.Paper, error) {
	paper := &model.Paper{
		Code:        input.Code,
		Subject:     input.Subject,
		ExamYear:    input.ExamYear,
		ExamSession: input.ExamSession,
		ExamBoard:   input.ExamBoard,
		TotalMarks:  input.TotalMarks,
		Status:      model.PaperDraft,
		CreatorID:   creatorID,
	}
	if err := s.PaperRepo.Create(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

func (s *PaperService) Get(ctx context.Context, paperID uint) (*model.Paper, error) {
	paper, err := s.PaperRepo.FindByID(paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaperNotFound
		}
		return nil, err
	}
	return paper, nil
}

func (s *PaperService) List(ctx context.Context, creatorID uint, page, limit int, search string) ([]model.Paper, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.PaperRepo.FindByCreatorWithPagination(creatorID, page, limit, search)
}

// Update 已导入的试卷不可再改
func (s *PaperService) Update(ctx context.Context, paperID uint, input UpdatePaperInput) (*model.Paper, error) {
	paper, err := s.Get(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper.Status == model.PaperImported {
		return nil, util.ErrPaperImported
	}

	if input.Code != nil {
		paper.Code = *input.Code
	}
	if input.Subject != nil {
		paper.Subject = *input.Subject
	}
	if input.ExamYear != nil {
		paper.ExamYear = *input.ExamYear
	}
	if input.ExamSession != nil {
		paper.ExamSession = *input.ExamSession
	}
	if input.ExamBoard != nil {
		paper.ExamBoard = *input.ExamBoard
	}
	if input.TotalMarks != nil {
		paper.TotalMarks = *input.TotalMarks
	}

	if err := s.PaperRepo.Update(paper); err != nil {
		return nil, err
	}
	s.ReviewService.InvalidateSummary(ctx, paperID)
	return paper, nil
}

func (s *PaperService) Delete(ctx context.Context, paperID uint) error {
	paper, err := s.Get(ctx, paperID)
	if err != nil {
		return err
	}
	if paper.Status == model.PaperImported {
		return util.ErrPaperImported
	}
	if err := s.PaperRepo.Delete(paperID); err != nil {
		return err
	}
	s.ReviewService.InvalidateSummary(ctx, paperID)
	return nil
}

// EnsureOwner 试卷归属校验，admin 放行
func (s *PaperService) EnsureOwner(paper *model.Paper, userID uint, role string) error {
	if role == "admin" {
		return nil
	}
	if paper.CreatorID != userID {
		return util.ErrPermissionDenied
	}
	return nil
}
