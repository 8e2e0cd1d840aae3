package service

import (
	"bytes"
	"context"
	"fmt"
	"paper_review_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	ReviewService *ReviewService
}

func NewExportService(reviewService *ReviewService) *ExportService {
	return &ExportService{ReviewService: reviewService}
}

// ExportReviewReport 导出审核报告为 xlsx：
// 概览页（元数据+统计+清单）和题目明细页（整棵树展平）。
func (s *ExportService) ExportReviewReport(ctx context.Context, paperID uint) (*bytes.Buffer, string, error) {
	summary, err := s.ReviewService.GetSummary(ctx, paperID)
	if err != nil {
		return nil, "", err
	}
	return renderReviewReport(summary)
}

func renderReviewReport(summary *ReviewSummary) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	overview := "概览"
	f.SetSheetName("Sheet1", overview)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})

	row := 1
	setRow := func(sheet string, cells ...interface{}) {
		for i, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	paper := summary.Paper
	setRow(overview, "试卷审核报告")
	f.SetCellStyle(overview, "A1", "A1", headerStyle)
	setRow(overview, "科目代码", paper.Code)
	setRow(overview, "科目", paper.Subject)
	setRow(overview, "考试年份", paper.ExamYear)
	setRow(overview, "考试场次", paper.ExamSession)
	setRow(overview, "考试局", paper.ExamBoard)
	setRow(overview)

	stats := summary.Statistics
	setRow(overview, "统计")
	setRow(overview, "题目数", stats.TotalQuestions)
	setRow(overview, "小题数", stats.TotalParts)
	setRow(overview, "子小题数", stats.TotalSubparts)
	setRow(overview, "合计分值", stats.TotalMarks)
	setRow(overview, "已配答案题数", stats.QuestionsWithAnswers)
	setRow(overview, "带附件题数", stats.QuestionsWithAttachments)
	setRow(overview, "完成率", fmt.Sprintf("%.1f%%", stats.CompletionRate))
	setRow(overview)

	setRow(overview, "检查清单")
	setRow(overview, "检查项", "状态", "说明")
	for _, item := range summary.Checklist {
		setRow(overview, item.Label, item.Status, item.Description)
	}
	setRow(overview)
	setRow(overview, "整体状态", summary.Overall)
	setRow(overview, "允许导入", summary.CanImport)

	detail := "题目明细"
	f.NewSheet(detail)
	row = 1
	setRow(detail, "节点键", "层级", "题号", "题干", "分值", "题型", "有答案", "有附件")
	f.SetCellStyle(detail, "A1", "H1", headerStyle)
	writeNodes(f, detail, &row, summary.Tree)

	f.SetColWidth(detail, "D", "D", 60)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("review_%s_%s.xlsx", paper.Code, paper.ExamYear)
	return &buf, filename, nil
}

func writeNodes(f *excelize.File, sheet string, row *int, nodes []ReviewNode) {
	for _, n := range nodes {
		cells := []interface{}{
			n.NodeKey, string(n.Kind), n.Label, n.DisplayText,
			util.FormatMarks(n.Marks), string(n.QuestionType), n.HasAnswer, n.HasAttachments,
		}
		for i, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(i+1, *row)
			f.SetCellValue(sheet, cell, v)
		}
		*row++
		writeNodes(f, sheet, row, n.Children)
	}
}
