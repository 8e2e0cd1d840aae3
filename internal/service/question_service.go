package service

import (
	"context"
	"errors"
	"paper_review_backend/internal/model"
	"paper_review_backend/internal/repository"
	"paper_review_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	PaperRepo     *repository.PaperRepository
	QuestionRepo  *repository.QuestionRepository
	ReviewService *ReviewService
}

func NewQuestionService(paperRepo *repository.PaperRepository, questionRepo *repository.QuestionRepository, reviewService *ReviewService) *QuestionService {
	return &QuestionService{
		PaperRepo:     paperRepo,
		QuestionRepo:  questionRepo,
		ReviewService: reviewService,
	}
}

type QuestionInput struct {
	ParentID     uint                  `json:"parentId"`
	Kind         model.NodeKind        `json:"kind" binding:"required"`
	Ordinal      int                   `json:"ordinal"`
	Label        string                `json:"label"`
	Body         string                `json:"body"`
	Marks        float64               `json:"marks"`
	QuestionType model.QuestionType    `json:"questionType"`
	Difficulty   string                `json:"difficulty"`
	AnswerText   string                `json:"answerText"`
	Answers      []model.CorrectAnswer `json:"answers"`
}

// Create 新建题目节点。层级约束：question 无父节点，
// part 的父节点必须是 question，subpart 的父节点必须是 part。
func (s *QuestionService) Create(ctx context.Context, paperID uint, input QuestionInput) (*model.PaperQuestion, error) {
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

	if err := s.checkHierarchy(paperID, input.Kind, input.ParentID); err != nil {
		return nil, err
	}

	if input.QuestionType == "" {
		input.QuestionType = model.Descriptive
	}

	question := &model.PaperQuestion{
		PaperID:      paperID,
		ParentID:     input.ParentID,
		Kind:         input.Kind,
		Ordinal:      input.Ordinal,
		Label:        input.Label,
		Body:         input.Body,
		Marks:        input.Marks,
		QuestionType: input.QuestionType,
		Difficulty:   input.Difficulty,
		AnswerText:   input.AnswerText,
		Answers:      input.Answers,
	}
	if err := s.QuestionRepo.Create(question); err != nil {
		return nil, err
	}
	s.ReviewService.InvalidateSummary(ctx, paperID)
	return question, nil
}

func (s *QuestionService) checkHierarchy(paperID uint, kind model.NodeKind, parentID uint) error {
	switch kind {
	case model.KindQuestion:
		if parentID != 0 {
			return util.ErrInvalidNode
		}
		return nil
	case model.KindPart, model.KindSubpart:
		if parentID == 0 {
			return util.ErrInvalidNode
		}
		parent, err := s.QuestionRepo.FindByID(parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrInvalidNode
			}
			return err
		}
		if parent.PaperID != paperID {
			return util.ErrInvalidNode
		}
		if kind == model.KindPart && parent.Kind != model.KindQuestion {
			return util.ErrInvalidNode
		}
		if kind == model.KindSubpart && parent.Kind != model.KindPart {
			return util.ErrInvalidNode
		}
		return nil
	default:
		return util.ErrInvalidNode
	}
}

func (s *QuestionService) Get(ctx context.Context, questionID uint) (*model.PaperQuestion, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) Update(ctx context.Context, questionID uint, input QuestionInput) (*model.PaperQuestion, error) {
	question, err := s.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	paper, err := s.PaperRepo.FindByID(question.PaperID)
	if err != nil {
		return nil, err
	}
	if paper.Status == model.PaperImported {
		return nil, util.ErrPaperImported
	}

	// Kind 与 ParentID 不允许改，避免破坏层级
	question.Ordinal = input.Ordinal
	question.Label = input.Label
	question.Body = input.Body
	question.Marks = input.Marks
	if input.QuestionType != "" {
		question.QuestionType = input.QuestionType
	}
	question.Difficulty = input.Difficulty
	question.AnswerText = input.AnswerText

	if err := s.QuestionRepo.Update(question); err != nil {
		return nil, err
	}
	if input.Answers != nil {
		if err := s.QuestionRepo.ReplaceAnswers(questionID, input.Answers); err != nil {
			return nil, err
		}
	}
	s.ReviewService.InvalidateSummary(ctx, question.PaperID)
	return s.Get(ctx, questionID)
}

func (s *QuestionService) Delete(ctx context.Context, questionID uint) error {
	question, err := s.Get(ctx, questionID)
	if err != nil {
		return err
	}
	paper, err := s.PaperRepo.FindByID(question.PaperID)
	if err != nil {
		return err
	}
	if paper.Status == model.PaperImported {
		return util.ErrPaperImported
	}

	if err := s.QuestionRepo.Delete(questionID); err != nil {
		return err
	}
	s.ReviewService.InvalidateSummary(ctx, question.PaperID)
	return nil
}
