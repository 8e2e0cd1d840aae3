package service

import (
	"context"
	"encoding/json"
	"fmt"
	"paper_review_backend/internal/model"
	"paper_review_backend/internal/repository"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	StatusComplete   = "complete"
	StatusWarning    = "warning"
	StatusIncomplete = "incomplete"
)

const (
	reviewCacheKeyFmt = "review:summary:%d"
	reviewCacheTTL    = 5 * time.Minute

	displayLabelLimit = 80
	placeholderBody   = "（题干缺失，待补充）"
)

// ReviewNode 审核树节点，只携带展示与聚合所需的字段
type ReviewNode struct {
	ID             uint               `json:"id"`
	NodeKey        string             `json:"nodeKey"` // 题ID[-小题ID[-子小题ID]]，连字符拼接
	Kind           model.NodeKind     `json:"kind"`
	Label          string             `json:"label"`
	DisplayText    string             `json:"displayText"` // 仅展示用截断，不回写原文
	Marks          float64            `json:"marks"`
	QuestionType   model.QuestionType `json:"questionType"`
	HasAnswer      bool               `json:"hasAnswer"`
	HasAttachments bool               `json:"hasAttachments"`
	Children       []ReviewNode       `json:"children,omitempty"`
}

// ReviewStatistics 全卷汇总统计
type ReviewStatistics struct {
	TotalQuestions           int     `json:"totalQuestions"`
	TotalParts               int     `json:"totalParts"`
	TotalSubparts            int     `json:"totalSubparts"`
	TotalMarks               float64 `json:"totalMarks"`
	QuestionsWithAnswers     int     `json:"questionsWithAnswers"`
	QuestionsWithAttachments int     `json:"questionsWithAttachments"`
	CompletionRate           float64 `json:"completionRate"`
}

// ChecklistItem 导入前检查清单的单项
type ChecklistItem struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Label       string `json:"label"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Count       *int   `json:"count,omitempty"`
	Total       *int   `json:"total,omitempty"`
}

// ValidationIssue 数据形态问题，计入 validation 清单项
type ValidationIssue struct {
	NodeKey string `json:"nodeKey"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FixReport 自动修复结果，明确报告改动了多少条记录
type FixReport struct {
	Changed     int      `json:"changed"`
	ChangedKeys []string `json:"changedKeys"`
}

// ReviewSummary 一张试卷的完整审核视图
type ReviewSummary struct {
	Paper      *model.Paper      `json:"paper"`
	Tree       []ReviewNode      `json:"tree"`
	Statistics ReviewStatistics  `json:"statistics"`
	Checklist  []ChecklistItem   `json:"checklist"`
	Issues     []ValidationIssue `json:"issues"`
	Overall    string            `json:"overall"`
	CanImport  bool              `json:"canImport"`
}

type ReviewService struct {
	PaperRepo    *repository.PaperRepository
	QuestionRepo *repository.QuestionRepository
	Redis        *redis.Client
}

func NewReviewService(paperRepo *repository.PaperRepository, questionRepo *repository.QuestionRepository, rdb *redis.Client) *ReviewService {
	return &ReviewService{
		PaperRepo:    paperRepo,
		QuestionRepo: questionRepo,
		Redis:        rdb,
	}
}

// GetSummary 组装试卷审核视图，结果短暂缓存于 Redis
func (s *ReviewService) GetSummary(ctx context.Context, paperID uint) (*ReviewSummary, error) {
	cacheKey := fmt.Sprintf(reviewCacheKeyFmt, paperID)

	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached ReviewSummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	summary, err := s.buildSummary(paperID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(summary); err == nil {
			s.Redis.Set(ctx, cacheKey, raw, reviewCacheTTL)
		}
	}
	return summary, nil
}

// InvalidateSummary 任何试卷内容变更后调用
func (s *ReviewService) InvalidateSummary(ctx context.Context, paperID uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, fmt.Sprintf(reviewCacheKeyFmt, paperID))
}

func (s *ReviewService) buildSummary(paperID uint) (*ReviewSummary, error) {
	paper, err := s.PaperRepo.FindByID(paperID)
	if err != nil {
		return nil, err
	}

	flat, err := s.QuestionRepo.ListByPaper(paperID)
	if err != nil {
		return nil, err
	}

	questions, orphans := AssembleHierarchy(flat)
	questions = NormalizeQuestions(questions)

	tree := BuildReviewTree(questions)
	stats := ComputeStatistics(tree)
	issues := ValidateQuestions(questions)
	for _, o := range orphans {
		issues = append(issues, ValidationIssue{
			NodeKey: strconv.FormatUint(uint64(o.ID), 10),
			Field:   "parentId",
			Message: fmt.Sprintf("parent %d not found", o.ParentID),
		})
	}

	checklist := BuildChecklist(paper, stats, len(issues))
	overall := RollUp(checklist)

	return &ReviewSummary{
		Paper:      paper,
		Tree:       tree,
		Statistics: stats,
		Checklist:  checklist,
		Issues:     issues,
		Overall:    overall,
		CanImport:  ImportAllowed(overall),
	}, nil
}

// AssembleHierarchy 将平面记录按 ParentID 组装为有序层级。
// 输入须已按 ordinal 排序，组装保持该顺序。父节点缺失的记录
// 不挂入树，作为第二个返回值交由上层计入校验问题。
func AssembleHierarchy(flat []model.PaperQuestion) ([]model.PaperQuestion, []model.PaperQuestion) {
	byID := make(map[uint]*model.PaperQuestion, len(flat))
	nodes := make([]*model.PaperQuestion, 0, len(flat))
	for i := range flat {
		n := flat[i]
		n.Children = nil
		copied := n
		byID[copied.ID] = &copied
		nodes = append(nodes, &copied)
	}

	roots := make([]*model.PaperQuestion, 0)
	orphans := make([]model.PaperQuestion, 0)
	for _, n := range nodes {
		if n.ParentID == 0 {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[n.ParentID]
		if !ok {
			orphans = append(orphans, *n)
			continue
		}
		parent.Children = append(parent.Children, *n)
	}

	// 子节点以值追加，孙层需要在父层定稿后回填
	for _, r := range roots {
		for i := range r.Children {
			child := byID[r.Children[i].ID]
			r.Children[i].Children = child.Children
		}
	}

	out := make([]model.PaperQuestion, 0, len(roots))
	for _, r := range roots {
		out = append(out, *r)
	}
	return out, orphans
}

// NormalizeQuestions 数据进入引擎时做一次规范化，下游不再各自兜底：
// 附件 URL 收敛为一个字段，缺失分值归 0，空题号按序号补齐。
func NormalizeQuestions(questions []model.PaperQuestion) []model.PaperQuestion {
	out := make([]model.PaperQuestion, len(questions))
	for i, q := range questions {
		out[i] = normalizeNode(q, i+1)
	}
	return out
}

func normalizeNode(q model.PaperQuestion, ordinal int) model.PaperQuestion {
	// 负分是输入契约违规，保留原值交给校验环节报告
	if strings.TrimSpace(q.Label) == "" {
		q.Label = strconv.Itoa(ordinal)
	}
	for i, a := range q.Attachments {
		q.Attachments[i].URL = canonicalAttachmentURL(a)
	}
	children := make([]model.PaperQuestion, len(q.Children))
	for i, c := range q.Children {
		children[i] = normalizeNode(c, i+1)
	}
	q.Children = children
	return q
}

func canonicalAttachmentURL(a model.Attachment) string {
	if a.URL != "" {
		return a.URL
	}
	if a.DataURL != "" {
		return a.DataURL
	}
	return a.FileURL
}

// BuildReviewTree 生成展示树。不丢节点，保持输入顺序，纯函数。
func BuildReviewTree(questions []model.PaperQuestion) []ReviewNode {
	out := make([]ReviewNode, 0, len(questions))
	for _, q := range questions {
		out = append(out, buildReviewNode(q, ""))
	}
	return out
}

func buildReviewNode(q model.PaperQuestion, parentKey string) ReviewNode {
	key := strconv.FormatUint(uint64(q.ID), 10)
	if parentKey != "" {
		key = parentKey + "-" + key
	}

	node := ReviewNode{
		ID:             q.ID,
		NodeKey:        key,
		Kind:           q.Kind,
		Label:          q.Label,
		DisplayText:    truncateForDisplay(q.Body),
		Marks:          q.Marks,
		QuestionType:   q.QuestionType,
		HasAnswer:      HasAnswer(q),
		HasAttachments: len(q.Attachments) > 0,
	}
	for _, c := range q.Children {
		node.Children = append(node.Children, buildReviewNode(c, key))
	}
	return node
}

// HasAnswer 节点有答案：参考答案集合非空，或单一文本答案非空
func HasAnswer(q model.PaperQuestion) bool {
	return len(q.Answers) > 0 || strings.TrimSpace(q.AnswerText) != ""
}

func truncateForDisplay(s string) string {
	if s == "" {
		return placeholderBody
	}
	runes := []rune(s)
	if len(runes) <= displayLabelLimit {
		return s
	}
	return string(runes[:displayLabelLimit]) + "..."
}

// ParseNodeKey 将 NodeKey 还原为 (题ID, 小题ID, 子小题ID)，缺层为 0
func ParseNodeKey(key string) (questionID, partID, subpartID uint, err error) {
	parts := strings.Split(key, "-")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("invalid node key: %s", key)
	}
	ids := make([]uint, 0, 3)
	for _, p := range parts {
		v, perr := strconv.ParseUint(p, 10, 32)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("invalid node key: %s", key)
		}
		ids = append(ids, uint(v))
	}
	questionID = ids[0]
	if len(ids) > 1 {
		partID = ids[1]
	}
	if len(ids) > 2 {
		subpartID = ids[2]
	}
	return questionID, partID, subpartID, nil
}

// ComputeStatistics 汇总统计。总分为三层分值之和（各层独立计分，
// 父层分值不包含子层）。答案与附件统计只看顶层题目。
func ComputeStatistics(tree []ReviewNode) ReviewStatistics {
	stats := ReviewStatistics{
		TotalQuestions: len(tree),
	}

	for _, q := range tree {
		stats.TotalMarks += q.Marks
		stats.TotalParts += len(q.Children)
		if q.HasAnswer {
			stats.QuestionsWithAnswers++
		}
		if q.HasAttachments {
			stats.QuestionsWithAttachments++
		}
		for _, p := range q.Children {
			stats.TotalMarks += p.Marks
			stats.TotalSubparts += len(p.Children)
			for _, sp := range p.Children {
				stats.TotalMarks += sp.Marks
			}
		}
	}

	if stats.TotalQuestions > 0 {
		stats.CompletionRate = float64(stats.QuestionsWithAnswers) / float64(stats.TotalQuestions) * 100
	}
	return stats
}

// ValidateQuestions 输入契约检查：负分、空题干、零分题。
// 问题不阻断渲染，只汇入 validation 清单项。
func ValidateQuestions(questions []model.PaperQuestion) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	for _, q := range questions {
		issues = append(issues, validateNode(q, "")...)
	}
	return issues
}

func validateNode(q model.PaperQuestion, parentKey string) []ValidationIssue {
	key := strconv.FormatUint(uint64(q.ID), 10)
	if parentKey != "" {
		key = parentKey + "-" + key
	}

	issues := make([]ValidationIssue, 0)
	if q.Marks < 0 {
		issues = append(issues, ValidationIssue{NodeKey: key, Field: "marks", Message: "marks must be non-negative"})
	}
	if q.Marks == 0 {
		issues = append(issues, ValidationIssue{NodeKey: key, Field: "marks", Message: "marks not set"})
	}
	if strings.TrimSpace(q.Body) == "" {
		issues = append(issues, ValidationIssue{NodeKey: key, Field: "body", Message: "question body is empty"})
	}
	for _, c := range q.Children {
		issues = append(issues, validateNode(c, key)...)
	}
	return issues
}

// BuildChecklist 生成固定六项检查清单，顺序即约定顺序
func BuildChecklist(paper *model.Paper, stats ReviewStatistics, validationErrors int) []ChecklistItem {
	items := make([]ChecklistItem, 0, 6)

	metadataStatus := StatusIncomplete
	if paper != nil && paper.Code != "" && paper.Subject != "" && paper.ExamYear != "" {
		metadataStatus = StatusComplete
	}
	items = append(items, ChecklistItem{
		ID:          "metadata",
		Category:    "试卷信息",
		Label:       "试卷元数据完整",
		Status:      metadataStatus,
		Description: "科目代码、科目与考试年份均已填写",
	})

	questionsStatus := StatusIncomplete
	if stats.TotalQuestions > 0 {
		questionsStatus = StatusComplete
	}
	items = append(items, ChecklistItem{
		ID:          "questions",
		Category:    "题目",
		Label:       "已录入题目",
		Status:      questionsStatus,
		Description: fmt.Sprintf("共 %d 题", stats.TotalQuestions),
	})

	answersStatus := StatusIncomplete
	if stats.QuestionsWithAnswers == stats.TotalQuestions {
		answersStatus = StatusComplete
	} else if stats.QuestionsWithAnswers > 0 {
		answersStatus = StatusWarning
	}
	answerCount := stats.QuestionsWithAnswers
	answerTotal := stats.TotalQuestions
	items = append(items, ChecklistItem{
		ID:          "answers",
		Category:    "题目",
		Label:       "参考答案覆盖",
		Status:      answersStatus,
		Description: fmt.Sprintf("%d/%d 题已配答案", answerCount, answerTotal),
		Count:       &answerCount,
		Total:       &answerTotal,
	})

	marksStatus := StatusIncomplete
	if stats.TotalMarks > 0 {
		marksStatus = StatusComplete
	}
	items = append(items, ChecklistItem{
		ID:          "marks",
		Category:    "题目",
		Label:       "分值已分配",
		Status:      marksStatus,
		Description: fmt.Sprintf("全卷合计 %.1f 分", stats.TotalMarks),
	})

	// attachments 只提示，从不判 incomplete
	attachmentsStatus := StatusWarning
	if stats.QuestionsWithAttachments > 0 {
		attachmentsStatus = StatusComplete
	}
	attachCount := stats.QuestionsWithAttachments
	attachTotal := stats.TotalQuestions
	items = append(items, ChecklistItem{
		ID:          "attachments",
		Category:    "附件",
		Label:       "附件检查",
		Status:      attachmentsStatus,
		Description: fmt.Sprintf("%d/%d 题带附件", attachCount, attachTotal),
		Count:       &attachCount,
		Total:       &attachTotal,
	})

	validationStatus := StatusIncomplete
	if validationErrors == 0 {
		validationStatus = StatusComplete
	}
	items = append(items, ChecklistItem{
		ID:          "validation",
		Category:    "校验",
		Label:       "数据校验通过",
		Status:      validationStatus,
		Description: fmt.Sprintf("%d 处校验问题", validationErrors),
	})

	return items
}

// RollUp 清单整体状态：任一 incomplete 即 incomplete，
// 否则任一 warning 即 warning，否则 complete
func RollUp(items []ChecklistItem) string {
	overall := StatusComplete
	for _, it := range items {
		if it.Status == StatusIncomplete {
			return StatusIncomplete
		}
		if it.Status == StatusWarning {
			overall = StatusWarning
		}
	}
	return overall
}

// ImportAllowed warning 不阻断导入，这是约定行为
func ImportAllowed(overall string) bool {
	return overall != StatusIncomplete
}

// BuildFixList 自动修复：空题干补占位文本，零分补 1 分。
// 不改输入，返回修复后的副本和改动明细；只能由用户显式触发。
func BuildFixList(questions []model.PaperQuestion) ([]model.PaperQuestion, FixReport) {
	report := FixReport{ChangedKeys: make([]string, 0)}
	out := make([]model.PaperQuestion, len(questions))
	for i, q := range questions {
		out[i] = fixNode(q, "", &report)
	}
	return out, report
}

func fixNode(q model.PaperQuestion, parentKey string, report *FixReport) model.PaperQuestion {
	key := strconv.FormatUint(uint64(q.ID), 10)
	if parentKey != "" {
		key = parentKey + "-" + key
	}

	changed := false
	if strings.TrimSpace(q.Body) == "" {
		q.Body = placeholderBody
		changed = true
	}
	if q.Marks == 0 {
		q.Marks = 1
		changed = true
	}
	if changed {
		report.Changed++
		report.ChangedKeys = append(report.ChangedKeys, key)
	}

	children := make([]model.PaperQuestion, len(q.Children))
	for i, c := range q.Children {
		children[i] = fixNode(c, key, report)
	}
	q.Children = children
	return q
}
